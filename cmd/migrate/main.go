package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/logger"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/storage"
)

// main imports a directory of .md files as posts into the configured store.
func main() {
	path := flag.String("path", "", "Path to the directory containing .md files")
	configPath := flag.String("config", config.DefaultConfigPath, "Path to the config file")
	flag.Parse()

	log := logger.New("info")
	storage.SetLogger(log)
	repository.SetLogger(log)
	config.SetLogger(log)

	if *path == "" {
		log.Fatal().Msg("The --path flag is required")
	}

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatal().Err(err).Msg(config.ErrLoadConfig)
	}
	cfg := config.AppConfig

	ctx := context.Background()

	slot, closeSlot, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msgf(config.ErrOpenSlotFmt, cfg.Store.Backend)
	}
	defer closeSlot()

	store := repository.NewContentStore(slot, repository.Options{
		Key:              cfg.Store.Key,
		Author:           cfg.Blog.Author,
		PlaceholderImage: cfg.Blog.PlaceholderImage,
	})
	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg(config.ErrInitializingPosts)
	}

	files, err := markdownFiles(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("Error reading directory")
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("Error reading file")
			continue
		}

		draft := draftFromMarkdown(filepath.Base(file), content)
		post, err := store.Add(ctx, draft)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("Error saving post")
			continue
		}
		log.Info().Str("file", file).Str("post_id", post.ID.String()).Msg("Successfully saved post")
	}
}

// markdownFiles lists the .md files in dir, oldest first, so the newest file
// ends up at the top of the collection.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type entry struct {
		path    string
		modTime int64
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		found = append(found, entry{filepath.Join(dir, e.Name()), info.ModTime().UnixNano()})
	}

	slices.SortStableFunc(found, func(a, b entry) int {
		switch {
		case a.modTime < b.modTime:
			return -1
		case a.modTime > b.modTime:
			return 1
		}
		return strings.Compare(a.path, b.path)
	})

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}

// draftFromMarkdown takes the title from a leading "# " heading, falling back
// to the file name. The heading is not repeated in the content.
func draftFromMarkdown(name string, content []byte) model.Draft {
	title := strings.TrimSuffix(name, ".md")
	body := bytes.TrimSpace(content)

	scanner := bufio.NewScanner(bytes.NewReader(body))
	if scanner.Scan() {
		first := scanner.Text()
		if heading, ok := strings.CutPrefix(first, "# "); ok && strings.TrimSpace(heading) != "" {
			title = strings.TrimSpace(heading)
			body = bytes.TrimSpace(body[len(first):])
		}
	}

	return model.Draft{
		Title:   title,
		Content: string(body),
	}
}
