package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	appmw "go-parish-platform/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Pages         *PageHandler
	Builder       *BuilderHandler
	Calendar      *CalendarHandler
	Announcements *AnnouncementHandler
	Sermons       *SermonHandler
	Donations     *DonationHandler
	Parishes      *ParishHandler
	Media         *MediaHandler
	Auth          *AuthHandler
	Seo           *SeoHandler
}

// Middlewares bundles the cross-cutting middleware the router applies.
type Middlewares struct {
	Session       func(http.Handler) http.Handler
	Authorize     func(http.Handler) http.Handler
	ResolveTenant func(http.Handler) http.Handler
	Errors        func(appmw.AppHandler) http.Handler
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, mw Middlewares, staticFS fs.FS) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(mw.Session)
	r.Use(mw.Authorize)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Method(http.MethodGet, "/", mw.Errors(h.Parishes.homeHandler))
	r.Get("/robots.txt", h.Seo.robotsHandler)
	r.Get("/sitemap.xml", h.Seo.sitemapHandler)

	// Authentication routes
	r.Get("/auth/login", h.Auth.handleLogin)
	r.Get("/auth/callback", h.Auth.handleCallback)
	r.Get("/auth/logout", h.Auth.handleLogout)

	// Uploaded files
	r.Get("/media/{parishID}/{file}", h.Media.serveHandler)

	// Public parish sites
	r.Route("/p/{parish}", func(r chi.Router) {
		r.Use(mw.ResolveTenant)

		r.Method(http.MethodGet, "/", mw.Errors(h.Pages.publicPageHandler))
		r.Method(http.MethodGet, "/calendar", mw.Errors(h.Calendar.publicCalendarHandler))
		r.Get("/calendar.ics", h.Calendar.icsFeedHandler)
		r.Method(http.MethodGet, "/announcements", mw.Errors(h.Announcements.publicAnnouncementsHandler))
		r.Method(http.MethodGet, "/sermons", mw.Errors(h.Sermons.publicSermonsHandler))
		r.Method(http.MethodGet, "/{slug}", mw.Errors(h.Pages.publicPageHandler))
	})

	// Platform administration (admin role)
	r.Route("/admin/parishes", func(r chi.Router) {
		r.Method(http.MethodGet, "/", mw.Errors(h.Parishes.listParishesHandler))
		r.Method(http.MethodPost, "/", mw.Errors(h.Parishes.createParishHandler))
		r.Method(http.MethodPost, "/{parishID}", mw.Errors(h.Parishes.updateParishHandler))
	})

	// Parish administration (editor role)
	r.Route("/admin/{parish}", func(r chi.Router) {
		r.Use(mw.ResolveTenant)

		r.Method(http.MethodGet, "/pages", mw.Errors(h.Pages.adminListPagesHandler))
		r.Method(http.MethodPost, "/pages", mw.Errors(h.Pages.adminCreatePageHandler))
		r.Method(http.MethodGet, "/pages/{pageID}/builder", mw.Errors(h.Pages.adminBuilderHandler))
		r.Method(http.MethodPost, "/pages/{pageID}", mw.Errors(h.Pages.adminUpdatePageHandler))
		r.Method(http.MethodPost, "/pages/{pageID}/delete", mw.Errors(h.Pages.adminDeletePageHandler))

		r.Method(http.MethodGet, "/events", mw.Errors(h.Calendar.adminListEventsHandler))
		r.Method(http.MethodPost, "/events", mw.Errors(h.Calendar.adminCreateEventHandler))
		r.Method(http.MethodPost, "/events/{eventID}", mw.Errors(h.Calendar.adminUpdateEventHandler))
		r.Method(http.MethodPost, "/events/{eventID}/delete", mw.Errors(h.Calendar.adminDeleteEventHandler))
		r.Method(http.MethodPost, "/schedules", mw.Errors(h.Calendar.adminCreateScheduleHandler))
		r.Method(http.MethodPost, "/schedules/{scheduleID}", mw.Errors(h.Calendar.adminUpdateScheduleHandler))
		r.Method(http.MethodPost, "/schedules/{scheduleID}/delete", mw.Errors(h.Calendar.adminDeleteScheduleHandler))

		r.Method(http.MethodGet, "/announcements", mw.Errors(h.Announcements.adminListAnnouncementsHandler))
		r.Method(http.MethodPost, "/announcements", mw.Errors(h.Announcements.adminCreateAnnouncementHandler))
		r.Method(http.MethodPost, "/announcements/{announcementID}", mw.Errors(h.Announcements.adminUpdateAnnouncementHandler))
		r.Method(http.MethodPost, "/announcements/{announcementID}/delete", mw.Errors(h.Announcements.adminDeleteAnnouncementHandler))

		r.Method(http.MethodGet, "/sermons", mw.Errors(h.Sermons.adminListSermonsHandler))
		r.Method(http.MethodPost, "/sermons", mw.Errors(h.Sermons.adminCreateSermonHandler))
		r.Method(http.MethodPost, "/sermons/{sermonID}", mw.Errors(h.Sermons.adminUpdateSermonHandler))
		r.Method(http.MethodPost, "/sermons/{sermonID}/delete", mw.Errors(h.Sermons.adminDeleteSermonHandler))

		r.Method(http.MethodGet, "/donations", mw.Errors(h.Donations.adminListDonationsHandler))
		r.Method(http.MethodPost, "/donations", mw.Errors(h.Donations.adminCreateDonationHandler))
		r.Method(http.MethodPost, "/donations/{donationID}/delete", mw.Errors(h.Donations.adminDeleteDonationHandler))
	})

	// Builder JSON API
	r.Route("/api/{parish}/pages/{pageID}", func(r chi.Router) {
		r.Use(mw.ResolveTenant)

		r.Get("/content", h.Builder.getContentHandler)
		r.Put("/content", h.Builder.putContentHandler)
		r.Post("/nodes", h.Builder.insertNodeHandler)
		r.Delete("/nodes/{nodeID}", h.Builder.removeNodeHandler)
		r.Post("/nodes/{nodeID}/move", h.Builder.moveNodeHandler)
		r.Patch("/nodes/{nodeID}/props", h.Builder.updatePropsHandler)
	})

	return r
}
