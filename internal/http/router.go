package http

import (
	"net/http"
	"time"

	"dymm/internal/auth"
	"dymm/internal/avatar"
	"dymm/internal/banner"
	"dymm/internal/bookmark"
	"dymm/internal/config"
	"dymm/internal/http/handler"
	mw "dymm/internal/http/middleware"
	"dymm/internal/lifelog"
	"dymm/internal/lifespan"
	"dymm/internal/mail"
	"dymm/internal/tag"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the router wires into handlers. Photos may be
// nil when no object storage is configured.
type Deps struct {
	DB     *gorm.DB
	JWT    *auth.JWT
	Codes  mail.CodeStore
	Photos handler.PhotoStore
	Log    logrus.FieldLogger
	Now    func() time.Time
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(d.Log))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logs := &lifelog.Service{DB: d.DB, Now: d.Now}
	avatars := &avatar.Service{DB: d.DB, Logs: logs, Now: d.Now}
	bookmarks := &bookmark.Service{DB: d.DB}

	th := &handler.TagHandler{Tags: &tag.Store{DB: d.DB}, Bookmarks: bookmarks, Logs: logs}
	ah := &handler.AvatarHandler{Avatars: avatars, JWT: d.JWT, Codes: d.Codes, Photos: d.Photos, Now: d.Now}
	lh := &handler.LogHandler{Logs: logs}
	lsh := &handler.LifespanHandler{Avatars: avatars, Ranker: &lifespan.Ranker{DB: d.DB}, Now: d.Now}
	bkh := &handler.BookmarkHandler{Bookmarks: bookmarks}
	bnh := &handler.BannerHandler{Banners: &banner.Service{DB: d.DB}}
	mh := &handler.MailHandler{Avatars: avatars, JWT: d.JWT}

	requireAccess := auth.RequireAuth(d.JWT, auth.KindAccess)
	limiter := mw.NewKeyedLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Get("/banner", bnh.List)

		r.Route("/tag", func(r chi.Router) {
			r.Get("/{tagID}/set/{sort}", th.Set)
			r.Get("/{tagID}/set/{sort}/page/{page}", th.Set)
			r.Post("/{tagID}/search/page/{page}", th.Search)

			r.Group(func(r chi.Router) {
				r.Use(requireAccess)
				r.Get("/{tagID}/set/match/{isSelected}", th.Match)
				r.With(auth.RequireOwner("avatarID")).
					Get("/{tagID}/set/{sort}/avt/{avatarID}/page/{page}", th.Set)
			})
		})

		r.Route("/mail", func(r chi.Router) {
			r.Get("/conf/{token}", mh.Confirm)
			r.With(requireAccess).Post("/conf-link", mh.ResendLink)
		})

		r.Route("/avatar", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimit(limiter))
				r.Post("/create", ah.Create)
				r.Post("/auth", ah.Auth)
				r.Post("/email/{option}", ah.Email)
			})
			r.With(auth.RequireAuth(d.JWT, auth.KindRefresh)).Post("/token/refresh", ah.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(requireAccess)

				r.Put("/", ah.UpdateInfo)
				r.Put("/profile/{profileTagID}/{tagID}", ah.SetProfileTag)

				r.Post("/log", lh.Create)
				r.Put("/log/{tagLogID}", lh.RemoveLog)
				r.Get("/group/{groupID}/log", lh.GroupLogs)
				r.Put("/group/{groupID}/{option}", lh.GroupOption)
				r.Post("/cond", lh.CreateCond)
				r.Put("/cond/{condID}", lh.RemoveCond)
				r.Post("/bookmark", bkh.Toggle)
				r.Get("/ranking/{bracket}/{starting}/{page}", lsh.Rankings)

				r.Route("/{avatarID}", func(r chi.Router) {
					r.Use(auth.RequireOwner("avatarID"))

					r.Get("/", ah.Get)
					r.Get("/profile", ah.Profile)
					r.Put("/photo", ah.UploadPhoto)
					r.Get("/life-span", lsh.LifeSpan)
					r.Get("/ranking/{bracket}", lsh.RankOf)

					r.Get("/cond", lh.Conds)
					r.Get("/group/{year}/{month}", lh.Groups)
					r.Get("/group/{year}/{month}/avg-score", lh.MonthAvg)
					r.Get("/group/{year}/week/{week}", lh.WeekGroups)
					r.Get("/group/{year}/week/{week}/avg-score", lh.WeekAvg)
					r.Get("/avg-score/{year}", lh.YearAvg)
					r.Get("/group-note/{page}", lh.Notes)

					r.Put("/bookmark/{bookmarkID}", bkh.ToggleByID)
				})
			})
		})
	})

	return r
}
