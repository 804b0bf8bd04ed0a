package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/surehub/platform/internal/domain"
	"github.com/surehub/platform/internal/repository"
)

// In-memory repository fakes. Commands only touch the transaction through
// the repositories, so tests pass a nil pgx.Tx.

type fakeStore struct {
	bookmakers map[uuid.UUID]*domain.Bookmaker
	bonuses    map[uuid.UUID]*domain.Bonus
	templates  map[uuid.UUID]*domain.BonusTemplate
	operations []repository.Operation
	outbox     []domain.OutboxDraft

	// insertErr, when set, is returned by the next bonus Insert.
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookmakers: make(map[uuid.UUID]*domain.Bookmaker),
		bonuses:    make(map[uuid.UUID]*domain.Bonus),
		templates:  make(map[uuid.UUID]*domain.BonusTemplate),
	}
}

func copyBonus(b *domain.Bonus) *domain.Bonus {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

type fakeBookmakerRepo struct{ s *fakeStore }

func (r *fakeBookmakerRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Bookmaker, error) {
	return r.s.bookmakers[id], nil
}

func (r *fakeBookmakerRepo) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Bookmaker, error) {
	return r.s.bookmakers[id], nil
}

func (r *fakeBookmakerRepo) Create(_ context.Context, _ repository.DBTX, bk *domain.Bookmaker) error {
	r.s.bookmakers[bk.ID] = bk
	return nil
}

func (r *fakeBookmakerRepo) ListByProject(_ context.Context, _ repository.DBTX, projectID uuid.UUID) ([]domain.Bookmaker, error) {
	var out []domain.Bookmaker
	for _, bk := range r.s.bookmakers {
		if bk.ProjectID == projectID {
			out = append(out, *bk)
		}
	}
	return out, nil
}

type fakeBonusRepo struct{ s *fakeStore }

func (r *fakeBonusRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Bonus, error) {
	return copyBonus(r.s.bonuses[id]), nil
}

func (r *fakeBonusRepo) FindOutstanding(_ context.Context, _ repository.DBTX, bookmakerID uuid.UUID) (*domain.Bonus, error) {
	for _, b := range r.s.bonuses {
		if b.BookmakerID == bookmakerID && b.Outstanding() {
			return copyBonus(b), nil
		}
	}
	return nil, nil
}

func (r *fakeBonusRepo) Insert(_ context.Context, _ repository.DBTX, b *domain.Bonus) (*domain.Bonus, error) {
	if r.s.insertErr != nil {
		return nil, r.s.insertErr
	}
	r.s.bonuses[b.ID] = copyBonus(b)
	return copyBonus(b), nil
}

func (r *fakeBonusRepo) Update(_ context.Context, _ repository.DBTX, b *domain.Bonus) (*domain.Bonus, error) {
	r.s.bonuses[b.ID] = copyBonus(b)
	return copyBonus(b), nil
}

func (r *fakeBonusRepo) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(r.s.bonuses, id)
	return nil
}

func (r *fakeBonusRepo) List(_ context.Context, _ repository.DBTX, filter repository.BonusFilter) ([]domain.Bonus, error) {
	var out []domain.Bonus
	for _, b := range r.s.bonuses {
		if filter.BookmakerID != uuid.Nil && b.BookmakerID != filter.BookmakerID {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeBonusRepo) ListCredited(_ context.Context, _ repository.DBTX, bookmakerID uuid.UUID) ([]domain.Bonus, error) {
	var out []domain.Bonus
	for _, b := range r.s.bonuses {
		if b.BookmakerID == bookmakerID && b.Status == domain.BonusStatusCredited {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeTemplateRepo struct{ s *fakeStore }

func (r *fakeTemplateRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.BonusTemplate, error) {
	return r.s.templates[id], nil
}

func (r *fakeTemplateRepo) ListByCatalog(_ context.Context, _ repository.DBTX, catalogID uuid.UUID) ([]domain.BonusTemplate, error) {
	var out []domain.BonusTemplate
	for _, t := range r.s.templates {
		if t.CatalogID == catalogID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeOperationRepo struct{ s *fakeStore }

func (r *fakeOperationRepo) FindExisting(_ context.Context, _ repository.DBTX, bookmakerID uuid.UUID, externalID string) (*repository.Operation, error) {
	for i := range r.s.operations {
		op := r.s.operations[i]
		if op.BookmakerID == bookmakerID && op.ExternalID == externalID {
			return &op, nil
		}
	}
	return nil, nil
}

func (r *fakeOperationRepo) Insert(_ context.Context, _ repository.DBTX, op repository.Operation) error {
	r.s.operations = append(r.s.operations, op)
	return nil
}

type fakeOutboxRepo struct{ s *fakeStore }

func (r *fakeOutboxRepo) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	r.s.outbox = append(r.s.outbox, draft)
	return nil
}

func (r *fakeOutboxRepo) FetchUnpublishedRows(_ context.Context, _ repository.DBTX, limit int) ([]repository.OutboxRow, error) {
	var out []repository.OutboxRow
	for i, d := range r.s.outbox {
		if i >= limit {
			break
		}
		out = append(out, repository.OutboxRow{SeqID: int64(i + 1), OutboxDraft: d})
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkPublished(_ context.Context, _ repository.DBTX, _ []int64) error {
	return nil
}

func newTestEngine(s *fakeStore) *Engine {
	return NewEngine(
		&fakeBookmakerRepo{s},
		&fakeBonusRepo{s},
		&fakeTemplateRepo{s},
		&fakeOperationRepo{s},
		&fakeOutboxRepo{s},
	)
}
