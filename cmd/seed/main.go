package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"time"

	"inkstand/internal/auth"
	"inkstand/internal/cache"
	"inkstand/internal/config"
	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/repository/postgres"
	postgresCMS "inkstand/internal/repository/postgres/cms"
	serviceAuth "inkstand/internal/service/auth"
	serviceCMS "inkstand/internal/service/cms"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo content")
	clearData := flag.Bool("clear-data", false, "Clear all sites, items, tags, diaries, showcases, visits and upload sessions (keep schema)")
	userID := flag.String("user", "demo-user", "Creator ID that owns the demo site")
	subdomain := flag.String("subdomain", "demo", "Subdomain of the demo site")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	switch {
	case *clearData:
		log.Printf("Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		return
	}

	if *clearData {
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared successfully")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	nodeRepo := postgresCMS.NewNodeRepository(repoConfig)
	tagRepo := postgresCMS.NewTagRepository(repoConfig)
	siteRepo := postgresCMS.NewSiteRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(siteRepo)

	tagService := serviceCMS.NewTagService(tagRepo, txManager, authorizer, logger)
	itemService := serviceCMS.NewItemService(nodeRepo, tagService, txManager, authorizer, logger)
	articleService := serviceCMS.NewArticleService(nodeRepo, tagRepo, tagService, txManager, authorizer, logger)
	siteService := serviceCMS.NewSiteService(siteRepo, cache.NewMemorySiteCache(time.Minute), authorizer, logger)

	site, err := ensureDemoSite(ctx, siteService, *userID, *subdomain)
	if err != nil {
		log.Fatalf("Failed to create demo site: %v", err)
	}
	log.Printf("Demo site %q (ID: %s)", site.Subdomain, site.ID)

	if err := seedTree(ctx, itemService, articleService, *userID, &site.ID); err != nil {
		log.Fatalf("Failed to seed items: %v", err)
	}

	if cfg.JWTSecret != "" {
		token, err := auth.IssueToken(cfg.JWTSecret, *userID, *userID+"@example.com", 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to issue dev token: %v", err)
		}
		log.Printf("Dev token for %s (24h): %s", *userID, token)
	}

	log.Println("Seeding complete!")
}

// ensureDemoSite returns the user's site with the given subdomain, creating it when missing
func ensureDemoSite(ctx context.Context, sites cmsSvc.SiteService, userID, subdomain string) (*models.Site, error) {
	site, err := sites.CreateSite(ctx, &cmsSvc.CreateSiteRequest{
		UserID:     userID,
		Subdomain:  subdomain,
		SiteName:   "Demo Notebook",
		OwnerName:  "Demo Author",
		Profession: "Writer",
	})
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}
	return sites.ResolveSubdomain(ctx, subdomain)
}

type seedArticle struct {
	title string
	tags  []models.TagRef
	text  []string
}

type seedFolder struct {
	name     string
	desc     string
	articles []seedArticle
}

var seedFolders = []seedFolder{
	{
		name: "Notes",
		desc: "Short technical notes",
		articles: []seedArticle{
			{
				title: "Ordering siblings",
				tags:  []models.TagRef{{Name: "go", Color: "#00add8"}},
				text:  []string{"Every folder keeps its children in a dense 0..n-1 order.", "Dragging an item renumbers the whole group."},
			},
			{
				title: "Resumable uploads",
				tags:  []models.TagRef{{Name: "go", Color: "#00add8"}, {Name: "storage"}},
				text:  []string{"Files are sent in chunks keyed by content hash.", "A retried chunk is acknowledged without being written again."},
			},
		},
	},
	{
		name: "Journal",
		desc: "",
		articles: []seedArticle{
			{title: "First entry", text: []string{"Hello from the demo site."}},
		},
	},
}

// seedTree creates the demo folders and articles unless the site already has items
func seedTree(ctx context.Context, items cmsSvc.ItemService, articles cmsSvc.ArticleService, userID string, siteID *string) error {
	existing, err := items.GetTree(ctx, siteID, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Demo site already has items, skipping")
		return nil
	}

	// AddItem inserts at rank 0, so create in reverse to keep the listed order
	for i := len(seedFolders) - 1; i >= 0; i-- {
		f := seedFolders[i]
		folder, err := items.AddItem(ctx, &cmsSvc.AddItemRequest{
			UserID: userID,
			SiteID: siteID,
			Name:   f.name,
			Kind:   models.KindFolder,
		})
		if err != nil {
			return err
		}
		if f.desc != "" {
			if _, err := items.UpdateDescription(ctx, &cmsSvc.UpdateDescriptionRequest{
				UserID:      userID,
				SiteID:      siteID,
				ID:          folder.ID,
				Description: f.desc,
			}); err != nil {
				return err
			}
		}

		for j := len(f.articles) - 1; j >= 0; j-- {
			a := f.articles[j]
			article, err := items.AddItem(ctx, &cmsSvc.AddItemRequest{
				UserID:   userID,
				SiteID:   siteID,
				Name:     a.title,
				Kind:     models.KindArticle,
				ParentID: &folder.ID,
				Tags:     a.tags,
			})
			if err != nil {
				return err
			}
			content, err := paragraphs(a.text)
			if err != nil {
				return err
			}
			if _, err := articles.UpdateContent(ctx, &cmsSvc.UpdateContentRequest{
				UserID:  userID,
				SiteID:  siteID,
				ID:      article.ID,
				Content: content,
			}); err != nil {
				return err
			}
			log.Printf("Created article %s/%s (ID: %s)", f.name, a.title, article.ID)
		}
	}
	return nil
}

// paragraphs builds block-editor content with one paragraph block per line
func paragraphs(lines []string) (json.RawMessage, error) {
	blocks := make([]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, map[string]interface{}{
			"type": "paragraph",
			"content": []interface{}{
				map[string]interface{}{"type": "text", "text": line},
			},
		})
	}
	return json.Marshal(blocks)
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createSites := `
		CREATE TABLE IF NOT EXISTS ` + tables.Sites + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			creator_id TEXT NOT NULL,
			subdomain TEXT NOT NULL UNIQUE,
			site_name TEXT NOT NULL,
			owner_name TEXT NOT NULL DEFAULT '',
			profession TEXT NOT NULL DEFAULT '',
			is_core BOOLEAN NOT NULL DEFAULT FALSE,
			is_pass BOOLEAN NOT NULL DEFAULT FALSE,
			is_off BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createSites); err != nil {
		return err
	}

	// Folders and articles share one table; parent_id always names a folder
	createNodes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Nodes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			kind TEXT NOT NULL CHECK (kind IN ('folder', 'article')),
			site_id UUID REFERENCES ` + tables.Sites + `(id) ON DELETE CASCADE,
			creator_id TEXT NOT NULL,
			parent_id UUID REFERENCES ` + tables.Nodes + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			tag_ids TEXT[] NOT NULL DEFAULT '{}',
			content JSONB,
			summary JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createNodes); err != nil {
		return err
	}

	createTags := `
		CREATE TABLE IF NOT EXISTS ` + tables.Tags + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			site_id UUID REFERENCES ` + tables.Sites + `(id) ON DELETE CASCADE,
			creator_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createTags); err != nil {
		return err
	}

	createUploads := `
		CREATE TABLE IF NOT EXISTS ` + tables.UploadSessions + ` (
			hash TEXT NOT NULL,
			name TEXT NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			mime_type TEXT NOT NULL DEFAULT '',
			total_chunks INTEGER NOT NULL,
			received_count INTEGER NOT NULL DEFAULT 0,
			received_chunks BYTEA,
			is_complete BOOLEAN NOT NULL DEFAULT FALSE,
			final_path TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (hash, name)
		)
	`
	if _, err := pool.Exec(ctx, createUploads); err != nil {
		return err
	}

	// Diary tag_ids reference tags by ID, as node tag_ids do
	createDiaries := `
		CREATE TABLE IF NOT EXISTS ` + tables.Diaries + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			site_id UUID REFERENCES ` + tables.Sites + `(id) ON DELETE CASCADE,
			creator_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content JSONB NOT NULL,
			summary JSONB NOT NULL,
			cover_image TEXT NOT NULL DEFAULT '',
			tag_ids TEXT[] NOT NULL DEFAULT '{}',
			remedy_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDiaries); err != nil {
		return err
	}

	createCarousels := `
		CREATE TABLE IF NOT EXISTS ` + tables.Carousels + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			site_id UUID REFERENCES ` + tables.Sites + `(id) ON DELETE CASCADE,
			creator_id TEXT NOT NULL,
			title TEXT NOT NULL,
			subtitle TEXT NOT NULL,
			description TEXT NOT NULL,
			img_url TEXT NOT NULL DEFAULT '',
			buttons JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createCarousels); err != nil {
		return err
	}

	createProjects := `
		CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			site_id UUID REFERENCES ` + tables.Sites + `(id) ON DELETE CASCADE,
			creator_id TEXT NOT NULL,
			title TEXT NOT NULL,
			img_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			likes INTEGER NOT NULL DEFAULT 0,
			button_url TEXT NOT NULL,
			content JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createProjects); err != nil {
		return err
	}

	createVisits := `
		CREATE TABLE IF NOT EXISTS ` + tables.Visits + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			site_id UUID NOT NULL REFERENCES ` + tables.Sites + `(id) ON DELETE CASCADE,
			ip TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			referer TEXT,
			day DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createVisits); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `sites_creator ON ` + tables.Sites + `(creator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `nodes_scope ON ` + tables.Nodes + `(site_id, creator_id, parent_id, sort_order)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `nodes_parent ON ` + tables.Nodes + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `nodes_articles ON ` + tables.Nodes + `(site_id, created_at DESC) WHERE kind = 'article'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `tags_unique ON ` + tables.Tags + `(COALESCE(site_id::text, ''), creator_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `diaries_tenant ON ` + tables.Diaries + `(site_id, creator_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `carousels_tenant ON ` + tables.Carousels + `(site_id, creator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_tenant ON ` + tables.Projects + `(site_id, creator_id, category)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `visits_site_day ON ` + tables.Visits + `(site_id, day)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables, dependents first
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  Dropped %s", table)
	}
	return nil
}

// clearAllData empties every table, keeping the schema
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
