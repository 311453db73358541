// Package web hosts the server-rendered assignment list.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignments/internal/assignmentlist"
	"github.com/noah-isme/gema-assignments/internal/middleware"
	"github.com/noah-isme/gema-assignments/pkg/apiclient"
)

//go:embed templates/*.html
var templateFS embed.FS

// SessionCookie names the cookie that binds a browser to its view.
const SessionCookie = "gema_view"

// Handler serves the assignment list pages.
type Handler struct {
	registry       *Registry
	store          *session.Store
	templates      *template.Template
	refreshSeconds int
	logger         zerolog.Logger
}

// NewHandler parses the page templates. reloadDelay sets the auto-refresh interval while a reload is pending.
func NewHandler(registry *Registry, store *session.Store, reloadDelay time.Duration, logger zerolog.Logger) (*Handler, error) {
	templates, err := template.New("assignments").Funcs(template.FuncMap{
		"cardData": func(actionBase string, card assignmentlist.Card) cardData {
			return cardData{ActionBase: actionBase, Card: card}
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	refresh := int(math.Ceil(reloadDelay.Seconds()))
	if refresh < 1 {
		refresh = 1
	}

	return &Handler{
		registry:       registry,
		store:          store,
		templates:      templates,
		refreshSeconds: refresh,
		logger:         logger.With().Str("component", "assignment_web").Logger(),
	}, nil
}

// Register attaches the page and form routes.
func (h *Handler) Register(router fiber.Router) {
	group := router.Group("/students/assignments/:listType")
	group.Get("", h.page)
	group.Post("/unsubmit/cancel", h.cancel)
	group.Post("/unsubmit/confirm", h.confirm)
	group.Post("/unsubmit/:id", h.open)
}

type navItem struct {
	Label  string
	URL    string
	Active bool
}

type toastView struct {
	Kind    assignmentlist.ToastKind
	Message template.HTML
}

type cardData struct {
	ActionBase string
	Card       assignmentlist.Card
}

type pageData struct {
	ListType       apiclient.ListType
	ActionBase     string
	Nav            []navItem
	Snapshot       assignmentlist.Snapshot
	Toasts         []toastView
	RefreshSeconds int
}

func (h *Handler) page(c *fiber.Ctx) error {
	listType, token, sessionID, err := h.resolve(c)
	if err != nil {
		return err
	}

	entry := h.registry.Acquire(sessionID, token)
	ctx := c.UserContext()

	// A page load fetches again. The redirect that ends a form action keeps
	// the dialog and the pending reload as they are.
	load := entry.View.Show
	if entry.takeRedirect() && c.Query("refresh") == "" {
		load = entry.View.SetListType
	}
	if err := load(ctx, listType); err != nil {
		h.logger.Warn().Err(err).Str("list_type", string(listType)).Msg("failed to load assignment list")
	}

	snapshot := entry.View.Snapshot()
	data := pageData{
		ListType:   listType,
		ActionBase: listType.Path(),
		Nav:        navigation(listType),
		Snapshot:   snapshot,
		Toasts:     toastViews(entry.Toasts.Drain()),
	}
	if snapshot.ReloadPending {
		data.RefreshSeconds = h.refreshSeconds
	}

	var body bytes.Buffer
	if err := h.templates.ExecuteTemplate(&body, "page", data); err != nil {
		h.logger.Error().Err(err).Msg("failed to render assignment page")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(body.Bytes())
}

func (h *Handler) open(c *fiber.Ctx) error {
	return h.mutate(c, func(entry *Session) error {
		return entry.View.OpenUnsubmit(c.Params("id"))
	})
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	return h.mutate(c, func(entry *Session) error {
		return entry.View.CancelUnsubmit()
	})
}

func (h *Handler) confirm(c *fiber.Ctx) error {
	return h.mutate(c, func(entry *Session) error {
		return entry.View.ConfirmUnsubmit(c.UserContext())
	})
}

// mutate applies a form action to an existing view and redirects back to the list.
func (h *Handler) mutate(c *fiber.Ctx, action func(*Session) error) error {
	listType, token, sessionID, err := h.resolve(c)
	if err != nil {
		return err
	}

	if entry, ok := h.registry.Lookup(sessionID, token); ok {
		entry.markRedirect()
		if err := action(entry); err != nil {
			level := h.logger.Warn()
			if !errors.Is(err, assignmentlist.ErrInvalidTransition) && !errors.Is(err, assignmentlist.ErrUnknownAssignment) {
				level = h.logger.Error()
			}
			level.Err(err).Str("path", c.Path()).Msg("assignment action rejected")
		}
	}

	return c.Redirect(listType.Path(), fiber.StatusSeeOther)
}

// resolve extracts the list type, the bearer token and the session id shared by every route.
func (h *Handler) resolve(c *fiber.Ctx) (apiclient.ListType, string, string, error) {
	listType, err := apiclient.ParseListType(c.Params("listType"))
	if err != nil {
		return "", "", "", fiber.NewError(fiber.StatusNotFound, "unknown assignment list")
	}

	token, err := middleware.BearerToken(c)
	if err != nil {
		return "", "", "", fiber.NewError(fiber.StatusUnauthorized, "sign in to view your assignments")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load session")
		return "", "", "", fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}
	sess.Set("list_type", strings.ToLower(string(listType)))
	sessionID := sess.ID()
	if err := sess.Save(); err != nil {
		h.logger.Error().Err(err).Msg("failed to save session")
		return "", "", "", fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}

	return listType, token, sessionID, nil
}

func navigation(active apiclient.ListType) []navItem {
	items := make([]navItem, 0, len(apiclient.ListTypes))
	for _, listType := range apiclient.ListTypes {
		items = append(items, navItem{
			Label:  string(listType),
			URL:    listType.Path(),
			Active: listType == active,
		})
	}
	return items
}

// toastViews marks messages as safe HTML; Toasts already sanitized them.
func toastViews(toasts []assignmentlist.Toast) []toastView {
	views := make([]toastView, 0, len(toasts))
	for _, toast := range toasts {
		views = append(views, toastView{Kind: toast.Kind, Message: template.HTML(toast.Message)})
	}
	return views
}

// NewSessionStore keeps session ids in the SessionCookie cookie for ttl.
func NewSessionStore(ttl time.Duration) *session.Store {
	return session.New(session.Config{
		Expiration:     ttl,
		KeyLookup:      "cookie:" + SessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}
