package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkstand/internal/config"
	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	"inkstand/internal/domain/repositories"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/domain/services"
	cmsSvc "inkstand/internal/domain/services/cms"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type articleService struct {
	nodeRepo   cmsRepo.NodeRepository
	tagRepo    cmsRepo.TagRepository
	tagService cmsSvc.TagService
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewArticleService creates a new article service
func NewArticleService(
	nodeRepo cmsRepo.NodeRepository,
	tagRepo cmsRepo.TagRepository,
	tagService cmsSvc.TagService,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) cmsSvc.ArticleService {
	return &articleService{
		nodeRepo:   nodeRepo,
		tagRepo:    tagRepo,
		tagService: tagService,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetArticle returns an article with its content and tags
func (s *articleService) GetArticle(ctx context.Context, id string, siteID *string) (*models.Article, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Message: "id is required"}
	}
	node, err := s.nodeRepo.GetByID(ctx, id, siteID)
	if err != nil {
		return nil, err
	}
	if node.Kind != models.KindArticle {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("article %s not found", id)}
	}
	return s.withTags(ctx, node)
}

// UpdateContent replaces the body and recomputes the summary
func (s *articleService) UpdateContent(ctx context.Context, req *cmsSvc.UpdateContentRequest) (*models.Article, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Content, validation.Required, validation.By(isBlockArray)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	node, err := s.loadArticle(ctx, req.UserID, req.ID, req.SiteID)
	if err != nil {
		return nil, err
	}

	summary, err := models.Summarize(req.Content, config.SummaryBlockCount)
	if err != nil {
		return nil, fmt.Errorf("%w: content: %v", domain.ErrValidation, err)
	}
	node, err = s.nodeRepo.Update(ctx, node.ID, models.NodePatch{Content: req.Content, Summary: summary})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article content updated", "id", node.ID, "bytes", len(req.Content))
	return s.withTags(ctx, node)
}

// UpdateTags replaces an article's tag set, creating missing tags
func (s *articleService) UpdateTags(ctx context.Context, req *cmsSvc.UpdateTagsRequest) (*models.Article, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, &domain.ValidationError{Message: "id is required"}
	}

	node, err := s.loadArticle(ctx, req.UserID, req.ID, req.SiteID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		ids, err := s.tagService.ResolveTags(ctx, req.UserID, node.SiteID, req.Tags)
		if err != nil {
			return err
		}
		node, err = s.nodeRepo.Update(ctx, node.ID, models.NodePatch{TagIDs: &ids})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article tags updated", "id", node.ID, "tags", len(node.TagIDs))
	return s.withTags(ctx, node)
}

// ListArticles returns one page of a tenant's articles, newest first
func (s *articleService) ListArticles(ctx context.Context, req *cmsSvc.ListArticlesRequest) (*models.ArticlePage, error) {
	page, size := clampPage(req.Page, req.PageSize)

	result := &models.ArticlePage{
		Articles: []models.ArticleListItem{},
		Page:     page,
		PageSize: size,
	}
	if req.SiteID == nil && req.ViewerID == "" {
		return result, nil
	}

	nodes, total, err := s.nodeRepo.ListArticles(ctx, req.SiteID, req.ViewerID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	result.Total = total

	tagsByID, err := tagsFor(ctx, s.tagRepo, nodeTagIDs(nodes))
	if err != nil {
		return nil, err
	}

	for _, n := range nodes {
		item := models.ArticleListItem{
			ID:        n.ID,
			Name:      n.Name,
			Summary:   n.Summary,
			Tags:      []models.Tag{},
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
			UpdatedAt: n.UpdatedAt.Format(time.RFC3339),
		}
		for _, id := range n.TagIDs {
			if tag, ok := tagsByID[id]; ok {
				item.Tags = append(item.Tags, tag)
			}
		}
		result.Articles = append(result.Articles, item)
	}

	return result, nil
}

func (s *articleService) loadArticle(ctx context.Context, userID, id string, siteID *string) (*models.Node, error) {
	node, err := s.nodeRepo.GetByID(ctx, id, siteID)
	if err != nil {
		return nil, err
	}
	if node.Kind != models.KindArticle {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("article %s not found", id)}
	}
	if err := s.authorizer.CanModifyNode(ctx, userID, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *articleService) withTags(ctx context.Context, node *models.Node) (*models.Article, error) {
	tags, err := s.tagRepo.GetByIDs(ctx, node.TagIDs)
	if err != nil {
		return nil, err
	}
	return &models.Article{Node: *node, Tags: tags}, nil
}

func nodeTagIDs(nodes []models.Node) []string {
	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.TagIDs...)
	}
	return ids
}

// tagsFor loads the distinct tags among ids, keyed by ID
func tagsFor(ctx context.Context, tagRepo cmsRepo.TagRepository, ids []string) (map[string]models.Tag, error) {
	var distinct []string
	seen := map[string]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	tags, err := tagRepo.GetByIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	return byID, nil
}

// isBlockArray checks the content is a JSON array of editor blocks
func isBlockArray(value interface{}) error {
	raw, _ := value.(json.RawMessage)
	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil || blocks == nil {
		return fmt.Errorf("must be an array of blocks")
	}
	return nil
}
