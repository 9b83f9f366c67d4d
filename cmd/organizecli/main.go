// Package main provides a headless CLI for the organizer pipeline. It
// authenticates with a refresh token instead of the browser OAuth flow.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/mks-o/spotify-organizer/internal/app/genres"
	"github.com/mks-o/spotify-organizer/internal/app/library"
	"github.com/mks-o/spotify-organizer/internal/app/organize"
	"github.com/mks-o/spotify-organizer/internal/infra/config"
	"github.com/mks-o/spotify-organizer/internal/infra/logger"
	spotifyinfra "github.com/mks-o/spotify-organizer/internal/infra/spotify"
)

var (
	app        = kingpin.New("organizecli", "Spotify library organizer CLI")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	exclude    = app.Flag("exclude", "Track IDs to exclude (comma-separated)").String()

	// songs command
	songsCmd   = app.Command("songs", "List the saved-tracks library")
	songsQuery = songsCmd.Flag("query", "Search filter").String()

	// genres command
	genresCmd = app.Command("genres", "Resolve genre categories per artist")

	// groups command
	groupsCmd = app.Command("groups", "Group the library")
	groupsBy  = groupsCmd.Flag("by", "Grouping mode: decade, genre or mood").Default("decade").String()

	// duplicates command
	duplicatesCmd = app.Command("duplicates", "List duplicate clusters")

	// create command
	createCmd   = app.Command("create", "Create a playlist from one group")
	createBy    = createCmd.Flag("by", "Grouping mode").Default("decade").String()
	createName  = createCmd.Flag("name", "Playlist name (default: derived)").String()
	createDesc  = createCmd.Flag("description", "Playlist description (default: derived)").String()
	createGroup = createCmd.Arg("group", "Group name").Required().String()

	// bulk command
	bulkCmd = app.Command("bulk", "Create a playlist for every group")
	bulkBy  = bulkCmd.Flag("by", "Grouping mode").Default("decade").String()

	// merge command
	mergeCmd    = app.Command("merge", "Merge groups into one playlist")
	mergeBy     = mergeCmd.Flag("by", "Grouping mode").Default("decade").String()
	mergeName   = mergeCmd.Flag("name", "Playlist name (default: suggested)").String()
	mergeDesc   = mergeCmd.Flag("description", "Playlist description (default: suggested)").String()
	mergeGroups = mergeCmd.Arg("groups", "Group names").Required().Strings()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stderr", Level: "warn"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if cfg.Spotify.RefreshToken == "" {
		fatal("A refresh token is required; run organizer-auth first")
	}

	ctx := context.Background()
	env, err := setup(ctx, cfg)
	if err != nil {
		fatal("Setup failed: %v", err)
	}

	switch command {
	case songsCmd.FullCommand():
		env.songs(*songsQuery)
	case genresCmd.FullCommand():
		env.genres(ctx)
	case groupsCmd.FullCommand():
		env.groups(ctx, *groupsBy)
	case duplicatesCmd.FullCommand():
		env.duplicates()
	case createCmd.FullCommand():
		env.create(ctx, *createBy, *createGroup, *createName, *createDesc)
	case bulkCmd.FullCommand():
		env.bulk(ctx, *bulkBy)
	case mergeCmd.FullCommand():
		env.merge(ctx, *mergeBy, *mergeGroups, *mergeName, *mergeDesc)
	}
}

// env bundles the assembled pipeline for one CLI invocation.
type env struct {
	manager  *library.Manager
	resolver *genres.Resolver
	namer    *organize.Namer
}

// setup builds the client stack and loads the library.
func setup(ctx context.Context, cfg *config.Config) (*env, error) {
	client, err := spotifyinfra.New(ctx, spotifyinfra.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
		Market:       cfg.Spotify.Market,
		LibraryLimit: cfg.Spotify.LibraryLimit,
	})
	if err != nil {
		return nil, err
	}

	chain, err := genres.NewChainFromConfig(cfg, client)
	if err != nil {
		return nil, err
	}
	resolver, err := genres.NewResolver(chain, organize.NewNormalizerFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	namer := organize.NewNamerFromConfig(cfg)
	manager := library.NewManager(client, organize.NewEngineFromConfig(cfg), namer)

	zlog.Debug().Msg("fetching library")
	tracks, err := client.FetchLibrary(ctx)
	if err != nil {
		return nil, err
	}
	manager.SetLibrary(tracks)

	if *exclude != "" {
		manager.SetExclusions(strings.Split(*exclude, ","))
	}

	return &env{manager: manager, resolver: resolver, namer: namer}, nil
}

// resolveIfNeeded resolves genres when the grouping mode requires them.
func (e *env) resolveIfNeeded(ctx context.Context, mode organize.Mode) error {
	if mode == organize.ModeDecade || e.manager.HasGenres() {
		return nil
	}
	resolved, err := e.resolver.Resolve(ctx, e.manager.Tracks())
	if err != nil {
		return err
	}
	e.manager.SetGenres(resolved)
	return nil
}

func (e *env) songs(query string) {
	tracks := e.manager.VisibleTracks(query)
	for _, t := range tracks {
		fmt.Printf("%s  %s — %s (%s)\n", t.ID, t.Name, strings.Join(t.ArtistNames(), ", "), t.Album.ReleaseDate)
	}
	fmt.Printf("\nTotal: %d tracks\n", len(tracks))
}

func (e *env) genres(ctx context.Context) {
	resolved, err := e.resolver.Resolve(ctx, e.manager.Tracks())
	if err != nil {
		fatal("Error: %v", err)
	}
	for id, category := range resolved {
		fmt.Printf("%s  %s\n", id, category)
	}
}

func (e *env) groups(ctx context.Context, by string) {
	mode := parseMode(by)
	if err := e.resolveIfNeeded(ctx, mode); err != nil {
		fatal("Error: %v", err)
	}

	grouping, err := e.manager.Groups(mode)
	if err != nil {
		fatal("Error: %v", err)
	}

	for _, g := range grouping.Groups() {
		fmt.Printf("%s (%d tracks)\n", g.Name, len(g.Tracks))
		for _, t := range g.Tracks {
			fmt.Printf("  %s — %s\n", t.Name, strings.Join(t.ArtistNames(), ", "))
		}
	}
}

func (e *env) duplicates() {
	clusters, err := e.manager.Duplicates()
	if err != nil {
		fatal("Error: %v", err)
	}
	if len(clusters) == 0 {
		fmt.Println("No duplicates found")
		return
	}

	for _, c := range clusters {
		fmt.Printf("%s (%d copies)\n", c.Key, len(c.Tracks))
		for _, t := range c.Tracks {
			fmt.Printf("  %s  %s [%s]\n", t.ID, t.Name, t.Album.Name)
		}
	}
}

func (e *env) create(ctx context.Context, by, group, name, description string) {
	mode := parseMode(by)
	if err := e.resolveIfNeeded(ctx, mode); err != nil {
		fatal("Error: %v", err)
	}

	created, err := e.manager.Publish(ctx, mode, group, name, description)
	if err != nil {
		fatal("Error: %v", err)
	}
	fmt.Printf("Created: %s\n  %s\n", created.Playlist.Name, created.Playlist.URL)
}

func (e *env) bulk(ctx context.Context, by string) {
	mode := parseMode(by)
	if err := e.resolveIfNeeded(ctx, mode); err != nil {
		fatal("Error: %v", err)
	}

	outcomes, err := e.manager.PublishAll(ctx, mode)
	if err != nil {
		fatal("Error: %v", err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Printf("✗ %s: %v\n", o.GroupName, o.Err)
			continue
		}
		fmt.Printf("✓ %s: %s\n", o.GroupName, o.Playlist.URL)
	}
	fmt.Printf("\nDone: %d created, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func (e *env) merge(ctx context.Context, by string, groups []string, name, description string) {
	mode := parseMode(by)
	if err := e.resolveIfNeeded(ctx, mode); err != nil {
		fatal("Error: %v", err)
	}

	if name == "" {
		name = e.namer.MergeName(groups)
	}
	created, err := e.manager.Merge(ctx, mode, groups, name, description)
	if err != nil {
		fatal("Error: %v", err)
	}
	fmt.Printf("Created: %s\n  %s\n", created.Playlist.Name, created.Playlist.URL)
}

func parseMode(by string) organize.Mode {
	mode, err := organize.ParseMode(by)
	if err != nil {
		fatal("Error: %v", err)
	}
	return mode
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
