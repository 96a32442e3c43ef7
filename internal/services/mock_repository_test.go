package services

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/events"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. Only the
// paths the tests exercise are implemented.
type mockRepository struct {
	proposal *mockProposalRepo
	review   *mockReviewRepo
	tag      *mockTagRepo
	user     *mockUserRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		proposal: &mockProposalRepo{
			proposals:  map[uint]*models.Proposal{},
			aggregates: map[uint]ratedAggregate{},
		},
		review:   &mockReviewRepo{reviews: map[uint]*models.Review{}},
		tag:      &mockTagRepo{},
		user:     &mockUserRepo{users: map[uint]*models.User{}},
	}
}

func (m *mockRepository) Proposal() repositories.ProposalRepository { return m.proposal }
func (m *mockRepository) Review() repositories.ReviewRepository     { return m.review }
func (m *mockRepository) Tag() repositories.TagRepository           { return m.tag }
func (m *mockRepository) User() repositories.UserRepository         { return m.user }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

type mockProposalRepo struct {
	mu        sync.Mutex
	nextID    uint
	proposals map[uint]*models.Proposal

	aggregates map[uint]ratedAggregate
}

type ratedAggregate struct {
	average float64
	count   int64
}

func (r *mockProposalRepo) Create(ctx context.Context, proposal *models.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	proposal.ID = r.nextID
	clone := *proposal
	r.proposals[proposal.ID] = &clone
	return nil
}

func (r *mockProposalRepo) GetByID(ctx context.Context, id uint) (*models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *mockProposalRepo) GetByIDs(ctx context.Context, ids []uint) ([]*models.Proposal, error) {
	out := make([]*models.Proposal, 0, len(ids))
	for _, id := range ids {
		if p, err := r.GetByID(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *mockProposalRepo) List(ctx context.Context, filters repositories.ProposalFilters) ([]*models.Proposal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Proposal
	for _, p := range r.proposals {
		if filters.UserID != nil && p.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && p.Status != *filters.Status {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *mockProposalRepo) Update(ctx context.Context, proposal *models.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.proposals[proposal.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *proposal
	r.proposals[proposal.ID] = &clone
	return nil
}

func (r *mockProposalRepo) UpdateStatus(ctx context.Context, id uint, status models.ProposalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *mockProposalRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.proposals, id)
	return nil
}

func (r *mockProposalRepo) ReplaceTags(ctx context.Context, proposal *models.Proposal, tags []models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.proposals[proposal.ID]; ok {
		p.Tags = tags
	}
	proposal.Tags = tags
	return nil
}

func (r *mockProposalRepo) TopRated(ctx context.Context, minAverage float64, limit int) ([]*repositories.RatedProposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rated []*repositories.RatedProposal
	for id, p := range r.proposals {
		agg := r.aggregates[id]
		if !repositories.QualifiesTopRated(p.Status, agg.average, agg.count, minAverage) {
			continue
		}
		clone := *p
		rated = append(rated, &repositories.RatedProposal{
			Proposal:      clone,
			AverageRating: agg.average,
			ReviewCount:   agg.count,
		})
	}
	repositories.SortRated(rated)

	if limit > 0 && limit < len(rated) {
		rated = rated[:limit]
	}
	return rated, nil
}

func (r *mockProposalRepo) ReviewAggregates(ctx context.Context, proposalID uint) (float64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg, ok := r.aggregates[proposalID]
	if !ok {
		return 0, 0, nil
	}
	return agg.average, agg.count, nil
}

type mockReviewRepo struct {
	mu      sync.Mutex
	nextID  uint
	reviews map[uint]*models.Review

	createErr error
}

func (r *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	review.ID = r.nextID
	clone := *review
	r.reviews[review.ID] = &clone
	return nil
}

func (r *mockReviewRepo) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *rev
	return &clone, nil
}

func (r *mockReviewRepo) ListByProposal(ctx context.Context, proposalID uint) ([]*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Review
	for _, rev := range r.reviews {
		if rev.ProposalID == proposalID {
			clone := *rev
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *mockReviewRepo) Update(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *review
	r.reviews[review.ID] = &clone
	return nil
}

func (r *mockReviewRepo) ExistsForReviewer(ctx context.Context, proposalID, reviewerID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.reviews {
		if rev.ProposalID == proposalID && rev.UserID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

type mockTagRepo struct {
	mu     sync.Mutex
	nextID uint
	tags   []models.Tag
}

func (r *mockTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	tag.ID = r.nextID
	r.tags = append(r.tags, *tag)
	return nil
}

func (r *mockTagRepo) List(ctx context.Context, filters repositories.TagFilters) ([]*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tag, len(r.tags))
	for i := range r.tags {
		clone := r.tags[i]
		out[i] = &clone
	}
	return out, nil
}

func (r *mockTagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tags {
		if r.tags[i].Name == name {
			clone := r.tags[i]
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockTagRepo) FindOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Tag
	for _, name := range names {
		found := false
		for i := range r.tags {
			if r.tags[i].Name == name {
				out = append(out, r.tags[i])
				found = true
				break
			}
		}
		if !found {
			r.nextID++
			tag := models.Tag{ID: r.nextID, Name: name}
			r.tags = append(r.tags, tag)
			out = append(out, tag)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func (r *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// recordingPublisher captures emitted domain events for assertions.
type recordingPublisher struct {
	mu            sync.Mutex
	submitted     []events.ProposalSubmitted
	reviewed      []events.ProposalReviewed
	statusChanged []events.ProposalStatusChanged
}

func (p *recordingPublisher) PublishProposalSubmitted(ctx context.Context, event events.ProposalSubmitted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitted = append(p.submitted, event)
	return nil
}

func (p *recordingPublisher) PublishProposalReviewed(ctx context.Context, event events.ProposalReviewed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reviewed = append(p.reviewed, event)
	return nil
}

func (p *recordingPublisher) PublishProposalStatusChanged(ctx context.Context, event events.ProposalStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanged = append(p.statusChanged, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// mockFileStore records removals; paths always resolve.
type mockFileStore struct {
	mu      sync.Mutex
	removed []string
	present map[string]bool
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{present: map[string]bool{}}
}

func (f *mockFileStore) AbsPath(storedPath string) (string, error) {
	return "/tmp/" + storedPath, nil
}

func (f *mockFileStore) Exists(storedPath string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.present[storedPath]
}

func (f *mockFileStore) Remove(storedPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, storedPath)
	delete(f.present, storedPath)
	return nil
}
