package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/env"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/editor"
	"github.com/debemdeboas/folio/internal/logger"
	"github.com/debemdeboas/folio/internal/media"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/routes"
	"github.com/debemdeboas/folio/internal/sse"
	"github.com/debemdeboas/folio/internal/storage"
	"github.com/debemdeboas/folio/internal/theme"
	"github.com/debemdeboas/folio/internal/util"
)

var clients = sse.NewSSEClients()

var mainLogger zerolog.Logger

func setLoggers(l zerolog.Logger) {
	mainLogger = logger.Component(l, "main")
	config.SetLogger(logger.Component(l, "config"))
	db.SetLogger(logger.Component(l, "db"))
	storage.SetLogger(logger.Component(l, "storage"))
	repository.SetLogger(logger.Component(l, "repository"))
	editor.SetLogger(logger.Component(l, "editor"))
	render.SetLogger(logger.Component(l, "render"))
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	configPath := env.GetString("FOLIO_CONFIG", config.DefaultConfigPath)
	setLoggers(logger.New(env.GetString("FOLIO_LOG_LEVEL", "info")))

	if err := config.LoadConfig(configPath); err != nil {
		mainLogger.Fatal().Err(err).Str("path", configPath).Msg(config.ErrLoadConfig)
	}
	cfg := config.AppConfig

	setLoggers(logger.New(env.GetString("FOLIO_LOG_LEVEL", cfg.Logging.Level)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slot, closeSlot, err := storage.Open(ctx, cfg)
	if err != nil {
		mainLogger.Fatal().Err(err).Msgf(config.ErrOpenSlotFmt, cfg.Store.Backend)
	}
	defer closeSlot()

	store := repository.NewContentStore(slot, repository.Options{
		Key:              cfg.Store.Key,
		Author:           cfg.Blog.Author,
		PlaceholderImage: cfg.Blog.PlaceholderImage,
	})
	if err := store.Init(ctx); err != nil {
		mainLogger.Fatal().Err(err).Msg(config.ErrInitializingPosts)
	}
	store.SetChangeNotifier(handleChangedPost)

	session := editor.NewSession(store, media.Decoder{MaxBytes: cfg.Media.MaxBytes})

	srv := &http.Server{
		Addr:        net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:     cacheIt(secured(newMux(store, session))),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	mainLogger.Info().Str("addr", srv.Addr).Str("site", cfg.Site.Name).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLogger.Fatal().Err(err).Msg("Server failed")
	}
	mainLogger.Info().Msg("Server stopped")
}

func newMux(store *repository.ContentStore, session *editor.Session) *http.ServeMux {
	posts := repository.NewHandler(store)
	edit := editor.NewHandler(session, store)

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})
	mux.HandleFunc(routes.SyntaxThemeGet, serveSyntaxThemeGetTheme)
	mux.HandleFunc(routes.SSEPath, eventsHandler)

	mux.HandleFunc(routes.APIPosts, posts.ServeList)
	mux.HandleFunc(routes.APIPost, posts.ServePost)
	mux.HandleFunc(routes.APIPostDelete, posts.ServeDelete)
	mux.HandleFunc(routes.PostPreview, posts.ServePreview)

	mux.HandleFunc(routes.EditorSnapshot, edit.ServeSnapshot)
	mux.HandleFunc(routes.EditorCompose, edit.ServeCompose)
	mux.HandleFunc(routes.EditorEdit, edit.ServeEdit)
	mux.HandleFunc(routes.EditorDraft, edit.ServeDraft)
	mux.HandleFunc(routes.EditorMedia, edit.ServeMedia)
	mux.HandleFunc(routes.EditorSubmit, edit.ServeSubmit)
	mux.HandleFunc(routes.EditorCancel, edit.ServeCancel)
	mux.HandleFunc(routes.EditorPreview, edit.ServePreview)

	return mux
}

func secured(mux http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" { // Ignore robots.txt
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}

func serveSyntaxThemeGetTheme(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("theme")
	if !theme.Exists(name) {
		http.NotFound(w, r)
		return
	}

	themeStyle := []byte(theme.SyntaxCSS(name))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}

// eventsHandler streams a reload event per changed post. The optional "post"
// query parameter restricts the stream to one post.
func eventsHandler(w http.ResponseWriter, r *http.Request) {
	postID := sse.AllPosts
	if raw := r.URL.Query().Get("post"); raw != "" {
		id, err := model.ParsePostID(raw)
		if err != nil {
			http.Error(w, config.HTTPErrInvalidPostID, http.StatusBadRequest)
			return
		}
		postID = id
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Del("X-Content-Type-Options")

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := sse.NewClient(postID)
	clients.Add(client)
	mainLogger.Debug().Str("post_id", postID.String()).Msg("New SSE client connected")

	defer func() {
		clients.Delete(client)
		mainLogger.Debug().Str("post_id", postID.String()).Msg("SSE client disconnected")
	}()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

// handleChangedPost drops cached post previews, whose content hashes may now be
// stale, and tells SSE clients to reload.
func handleChangedPost(id model.PostID) {
	cache.ClearRenderedPreviewCache()
	go clients.Broadcast(id, id.String())
}
