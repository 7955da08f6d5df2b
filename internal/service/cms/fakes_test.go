package cms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	"inkstand/internal/domain/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

func sameSite(a, b *string) bool {
	return sameParent(a, b)
}

// fakeStore is the shared in-memory state behind the fake repositories.
// ExecTx snapshots it and restores the snapshot when fn fails.
type fakeStore struct {
	mu      sync.Mutex
	nodes   map[string]models.Node
	tags    map[string]models.Tag
	sites   map[string]models.Site
	diaries map[string]models.Diary
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nodes:   map[string]models.Node{},
		tags:    map[string]models.Tag{},
		sites:   map[string]models.Site{},
		diaries: map[string]models.Diary{},
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

type fakeTxManager struct {
	store *fakeStore
	// txMu serializes transactions, standing in for the advisory locks
	txMu sync.Mutex
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.store.mu.Lock()
	nodes := make(map[string]models.Node, len(m.store.nodes))
	for k, v := range m.store.nodes {
		nodes[k] = v
	}
	tags := make(map[string]models.Tag, len(m.store.tags))
	for k, v := range m.store.tags {
		tags[k] = v
	}
	diaries := make(map[string]models.Diary, len(m.store.diaries))
	for k, v := range m.store.diaries {
		diaries[k] = v
	}
	m.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.store.mu.Lock()
		m.store.nodes = nodes
		m.store.tags = tags
		m.store.diaries = diaries
		m.store.mu.Unlock()
		return err
	}
	return nil
}

type fakeNodeRepo struct {
	store *fakeStore
	locks []string

	// interleaving hooks; each fires once and is then cleared
	afterGet     func(id string)
	beforeUpdate func(id string)
}

func fireOnce(hook *func(string), id string) {
	if h := *hook; h != nil {
		*hook = nil
		h(id)
	}
}

func (r *fakeNodeRepo) Create(_ context.Context, node *models.Node) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	node.ID = r.store.nextID("node")
	node.CreatedAt = time.Unix(int64(r.store.seq), 0)
	node.UpdatedAt = node.CreatedAt
	r.store.nodes[node.ID] = *node
	return nil
}

func (r *fakeNodeRepo) GetByID(_ context.Context, id string, siteID *string) (*models.Node, error) {
	r.store.mu.Lock()
	n, ok := r.store.nodes[id]
	r.store.mu.Unlock()
	if !ok || !sameSite(n.SiteID, siteID) {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	fireOnce(&r.afterGet, id)
	return &n, nil
}

func (r *fakeNodeRepo) Update(_ context.Context, id string, patch models.NodePatch) (*models.Node, error) {
	fireOnce(&r.beforeUpdate, id)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.nodes[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	patch.Apply(&n)
	r.store.nodes[id] = n
	return &n, nil
}

func (r *fakeNodeRepo) Move(_ context.Context, id string, parentID *string, order int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.nodes[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	if parentID != nil {
		if _, ok := r.store.nodes[*parentID]; !ok {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
	}
	n.ParentID = parentID
	n.Order = order
	r.store.nodes[id] = n
	return nil
}

func (r *fakeNodeRepo) DeleteMany(_ context.Context, ids []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range ids {
		delete(r.store.nodes, id)
	}
	return nil
}

func (r *fakeNodeRepo) inScope(n models.Node, scope models.SiblingScope) bool {
	return sameSite(n.SiteID, scope.SiteID) && n.CreatorID == scope.CreatorID && sameParent(n.ParentID, scope.ParentID)
}

func (r *fakeNodeRepo) ListSiblings(_ context.Context, scope models.SiblingScope) ([]models.Node, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Node
	for _, n := range r.store.nodes {
		if r.inScope(n, scope) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == models.KindFolder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeNodeRepo) ShiftSiblings(_ context.Context, scope models.SiblingScope, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, n := range r.store.nodes {
		if r.inScope(n, scope) {
			n.Order += delta
			r.store.nodes[id] = n
		}
	}
	return nil
}

func (r *fakeNodeRepo) SetOrders(_ context.Context, orders map[string]int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, order := range orders {
		n, ok := r.store.nodes[id]
		if !ok {
			continue
		}
		n.Order = order
		r.store.nodes[id] = n
	}
	return nil
}

func (r *fakeNodeRepo) LockSiblings(_ context.Context, scope models.SiblingScope) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.locks = append(r.locks, scope.Key())
	return nil
}

func (r *fakeNodeRepo) FindSiblingByName(_ context.Context, scope models.SiblingScope, kind models.NodeKind, name string) (*models.Node, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.nodes {
		if r.inScope(n, scope) && n.Kind == kind && n.Name == name {
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeNodeRepo) ListChildIDs(_ context.Context, parentID string) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var ids []string
	for _, n := range r.store.nodes {
		if n.ParentID != nil && *n.ParentID == parentID {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeNodeRepo) tenant(siteID *string, creatorID string) []models.Node {
	var out []models.Node
	for _, n := range r.store.nodes {
		if !sameSite(n.SiteID, siteID) {
			continue
		}
		if siteID == nil && n.CreatorID != creatorID {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeNodeRepo) ListTenant(_ context.Context, siteID *string, creatorID string) ([]models.Node, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.tenant(siteID, creatorID), nil
}

func (r *fakeNodeRepo) ListArticles(_ context.Context, siteID *string, creatorID string, offset, limit int) ([]models.Node, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var articles []models.Node
	all := r.tenant(siteID, creatorID)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Kind == models.KindArticle {
			articles = append(articles, all[i])
		}
	}
	total := len(articles)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return articles[offset:end], total, nil
}

type fakeTagRepo struct {
	store *fakeStore
}

func (r *fakeTagRepo) Create(_ context.Context, tag *models.Tag) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.tags {
		if t.Name == tag.Name && t.CreatorID == tag.CreatorID && sameSite(t.SiteID, tag.SiteID) {
			return &domain.ConflictError{Message: "tag exists", ResourceType: "tag", ResourceID: t.ID}
		}
	}
	tag.ID = r.store.nextID("tag")
	r.store.tags[tag.ID] = *tag
	return nil
}

func (r *fakeTagRepo) GetByID(_ context.Context, id string) (*models.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tags[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTagRepo) FindByName(_ context.Context, name, creatorID string, siteID *string) (*models.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.tags {
		if t.Name == name && t.CreatorID == creatorID && sameSite(t.SiteID, siteID) {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTagRepo) GetByIDs(_ context.Context, ids []string) ([]models.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []models.Tag{}
	for _, id := range ids {
		if t, ok := r.store.tags[id]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTagRepo) ListBySite(_ context.Context, siteID *string, creatorID string) ([]models.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []models.Tag{}
	for _, t := range r.store.tags {
		if sameSite(t.SiteID, siteID) && (siteID != nil || t.CreatorID == creatorID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTagRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.tags, id)
	return nil
}

func (r *fakeTagRepo) RemoveFromContent(_ context.Context, tagID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, n := range r.store.nodes {
		n.TagIDs = without(n.TagIDs, tagID)
		r.store.nodes[id] = n
	}
	for id, d := range r.store.diaries {
		d.TagIDs = without(d.TagIDs, tagID)
		r.store.diaries[id] = d
	}
	return nil
}

func without(ids []string, drop string) []string {
	kept := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			kept = append(kept, id)
		}
	}
	return kept
}

type fakeSiteRepo struct {
	store *fakeStore
	gets  int
}

func (r *fakeSiteRepo) Create(_ context.Context, site *models.Site) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sites {
		if s.Subdomain == site.Subdomain {
			return &domain.ConflictError{Message: "subdomain taken", ResourceType: "site", ResourceID: s.ID}
		}
	}
	site.ID = r.store.nextID("site")
	r.store.sites[site.ID] = *site
	return nil
}

func (r *fakeSiteRepo) GetByID(_ context.Context, id string) (*models.Site, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sites[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSiteRepo) GetBySubdomain(ctx context.Context, subdomain string) (*models.Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.gets++
	for _, s := range r.store.sites {
		if s.Subdomain == subdomain {
			return &s, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "site not found"}
}

func (r *fakeSiteRepo) ListByCreator(_ context.Context, creatorID string) ([]models.Site, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []models.Site{}
	for _, s := range r.store.sites {
		if s.CreatorID == creatorID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSiteRepo) Update(_ context.Context, site *models.Site) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sites[site.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.sites[site.ID] = *site
	return nil
}

// children returns the names of a parent's children in order, for assertions
func (s *fakeStore) children(parentID *string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var group []models.Node
	for _, n := range s.nodes {
		if sameParent(n.ParentID, parentID) {
			group = append(group, n)
		}
	}
	sort.Slice(group, func(i, j int) bool { return group[i].Order < group[j].Order })
	names := make([]string, len(group))
	for i, n := range group {
		names[i] = n.Name
	}
	return names
}

// orders returns the order values of a parent's children, sorted
func (s *fakeStore) orders(parentID *string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, n := range s.nodes {
		if sameParent(n.ParentID, parentID) {
			out = append(out, n.Order)
		}
	}
	sort.Ints(out)
	return out
}

func joinNames(names []string) string {
	return strings.Join(names, ",")
}
