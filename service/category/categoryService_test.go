package categorysvc_test

import (
	"context"
	"testing"

	"libraryhub/model"
	categorysvc "libraryhub/service/category"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type repoMock struct {
	createFn func(ctx context.Context, name string) (*model.Category, error)
	listFn   func(ctx context.Context) ([]model.Category, error)
}

func (m *repoMock) Create(ctx context.Context, name string) (*model.Category, error) {
	return m.createFn(ctx, name)
}
func (m *repoMock) List(ctx context.Context) ([]model.Category, error) { return m.listFn(ctx) }

func TestCreate_TrimsName(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, name string) (*model.Category, error) {
			if name != "Science Fiction" {
				t.Fatalf("name not trimmed: %q", name)
			}
			return &model.Category{ID: 1, Name: name}, nil
		},
	}
	s := categorysvc.New(m)
	if _, err := s.Create(context.Background(), "  Science Fiction  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_Empty(t *testing.T) {
	s := categorysvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), "   "); categorysvc.Code(err) != categorysvc.ErrBadInput {
		t.Fatalf("got %v; want BAD_INPUT", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, name string) (*model.Category, error) {
			return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "categories_name_key"}
		},
	}
	s := categorysvc.New(m)
	if _, err := s.Create(context.Background(), "Fantasy"); categorysvc.Code(err) != categorysvc.ErrNameTaken {
		t.Fatalf("got %v; want NAME_TAKEN", err)
	}
}
