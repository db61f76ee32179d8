package borrowingsvc

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"libraryhub/model"
	borrowrepo "libraryhub/repository/borrowing"

	"github.com/stretchr/testify/require"
)

// fakeLedger implements borrowrepo.Repo in memory with the same guarded
// semantics as the SQL implementation: the availability check and the
// decrement happen under one lock.
type fakeLedger struct {
	mu     sync.Mutex
	total  map[int64]int
	avail  map[int64]int
	rows   map[int64]*model.Borrowing
	nextID int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		total: map[int64]int{},
		avail: map[int64]int{},
		rows:  map[int64]*model.Borrowing{},
	}
}

func (f *fakeLedger) addBook(id int64, copies int) {
	f.total[id] = copies
	f.avail[id] = copies
}

func (f *fakeLedger) Borrow(ctx context.Context, userID, bookID int64, dueDate time.Time) (*model.Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.total[bookID]; !ok {
		return nil, borrowrepo.ErrBookNotFound
	}
	if f.avail[bookID] < 1 {
		return nil, borrowrepo.ErrNoCopies
	}
	f.avail[bookID]--

	f.nextID++
	b := &model.Borrowing{
		ID:         f.nextID,
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: time.Now(),
		DueDate:    dueDate,
		Status:     model.StatusBorrowed,
	}
	f.rows[b.ID] = b
	cp := *b
	return &cp, nil
}

func (f *fakeLedger) Return(ctx context.Context, id int64, returnedAt time.Time, authorize borrowrepo.AuthorizeFunc) (*model.Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.rows[id]
	if !ok {
		return nil, borrowrepo.ErrNotFound
	}
	if authorize != nil {
		cp := *b
		if err := authorize(&cp); err != nil {
			return nil, err
		}
	}
	if b.Status != model.StatusBorrowed {
		return nil, borrowrepo.ErrNotBorrowed
	}
	if f.avail[b.BookID] >= f.total[b.BookID] {
		return nil, borrowrepo.ErrNotBorrowed
	}
	f.avail[b.BookID]++
	b.Status = model.StatusReturned
	b.ReturnDate = &returnedAt
	cp := *b
	return &cp, nil
}

func (f *fakeLedger) ListByUser(ctx context.Context, userID int64) ([]model.Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Borrowing
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// sortNewestFirst mirrors the repository contract: borrow_date DESC, id DESC.
func sortNewestFirst(rows []model.Borrowing) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].BorrowDate.Equal(rows[j].BorrowDate) {
			return rows[i].BorrowDate.After(rows[j].BorrowDate)
		}
		return rows[i].ID > rows[j].ID
	})
}

func (f *fakeLedger) ListByBook(ctx context.Context, bookID int64) ([]model.Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Borrowing
	for _, b := range f.rows {
		if b.BookID == bookID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListAll(ctx context.Context) ([]model.Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Borrowing
	for _, b := range f.rows {
		out = append(out, *b)
	}
	return out, nil
}

var _ Repo = (*fakeLedger)(nil)

func newService(r Repo, now time.Time) *service {
	return &service{r: r, now: func() time.Time { return now }}
}

func TestBorrow_Success(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 2)
	s := newService(f, now)

	b, err := s.Borrow(context.Background(), 7, 1, now.Add(14*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(7), b.UserID)
	require.Equal(t, model.StatusBorrowed, b.Status)
	require.Nil(t, b.ReturnDate)
	require.Equal(t, 1, f.avail[1])
}

func TestBorrow_BookNotFound(t *testing.T) {
	s := newService(newFakeLedger(), time.Now())
	_, err := s.Borrow(context.Background(), 7, 99, time.Now().Add(time.Hour))
	require.Error(t, err)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestBorrow_PastDueDate(t *testing.T) {
	f := newFakeLedger()
	f.addBook(1, 1)
	s := newService(f, time.Now())

	_, err := s.Borrow(context.Background(), 7, 1, time.Now().Add(-time.Hour))
	require.Error(t, err)
	require.Equal(t, ErrBadDueDate, Code(err))
	require.Equal(t, 1, f.avail[1], "failed borrow must not touch the count")
}

func TestBorrow_ExhaustsCopies(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 3)
	s := newService(f, now)
	due := now.Add(14 * 24 * time.Hour)

	for userID := int64(1); userID <= 3; userID++ {
		_, err := s.Borrow(context.Background(), userID, 1, due)
		require.NoError(t, err)
	}
	require.Equal(t, 0, f.avail[1])

	_, err := s.Borrow(context.Background(), 4, 1, due)
	require.Error(t, err)
	require.Equal(t, ErrNoCopies, Code(err))
	require.Equal(t, 0, f.avail[1], "count must not go negative")
}

func TestBorrow_LastCopyRace(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 1)
	s := newService(f, now)
	due := now.Add(24 * time.Hour)

	const borrowers = 16
	var wg sync.WaitGroup
	errs := make([]error, borrowers)
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Borrow(context.Background(), int64(i+1), 1, due)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.Equal(t, ErrNoCopies, Code(err))
		}
	}
	require.Equal(t, 1, wins, "exactly one borrower gets the last copy")
	require.Equal(t, 0, f.avail[1])
}

func TestReturn_RoundTrip(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 1)
	s := newService(f, now)

	b, err := s.Borrow(context.Background(), 7, 1, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 0, f.avail[1])

	out, err := s.Return(context.Background(), model.Principal{UserID: 7, Role: model.RoleUser}, b.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, out.Status)
	require.NotNil(t, out.ReturnDate)
	require.Equal(t, 1, f.avail[1], "round trip restores the count")
}

func TestReturn_Twice(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 1)
	s := newService(f, now)
	p := model.Principal{UserID: 7, Role: model.RoleUser}

	b, err := s.Borrow(context.Background(), 7, 1, now.Add(24*time.Hour))
	require.NoError(t, err)

	_, err = s.Return(context.Background(), p, b.ID)
	require.NoError(t, err)

	_, err = s.Return(context.Background(), p, b.ID)
	require.Error(t, err)
	require.Equal(t, ErrNotBorrowed, Code(err))
	require.Equal(t, 1, f.avail[1], "count incremented exactly once")
}

func TestReturn_NotOwner(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 1)
	s := newService(f, now)

	b, err := s.Borrow(context.Background(), 7, 1, now.Add(24*time.Hour))
	require.NoError(t, err)

	_, err = s.Return(context.Background(), model.Principal{UserID: 8, Role: model.RoleUser}, b.ID)
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))
	require.Equal(t, 0, f.avail[1], "rejected return must not touch the count")
}

func TestReturn_AdminOnBehalf(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 1)
	s := newService(f, now)

	b, err := s.Borrow(context.Background(), 7, 1, now.Add(24*time.Hour))
	require.NoError(t, err)

	out, err := s.Return(context.Background(), model.Principal{UserID: 1, Role: model.RoleAdmin}, b.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, out.Status)
}

func TestReturn_NotFound(t *testing.T) {
	s := newService(newFakeLedger(), time.Now())
	_, err := s.Return(context.Background(), model.Principal{UserID: 7, Role: model.RoleUser}, 123)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestListMine_OwnRowsNewestFirst(t *testing.T) {
	now := time.Now()
	f := newFakeLedger()
	f.addBook(1, 5)
	s := newService(f, now)
	due := now.Add(14 * 24 * time.Hour)

	first, err := s.Borrow(context.Background(), 7, 1, due)
	require.NoError(t, err)
	second, err := s.Borrow(context.Background(), 7, 1, due)
	require.NoError(t, err)
	_, err = s.Borrow(context.Background(), 8, 1, due)
	require.NoError(t, err)

	rows, err := s.ListMine(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rows, 2, "only the caller's records")
	require.Equal(t, second.ID, rows[0].ID)
	require.Equal(t, first.ID, rows[1].ID)
}

func TestListMine_DerivesOverdue(t *testing.T) {
	start := time.Now()
	f := newFakeLedger()
	f.addBook(1, 2)
	s := newService(f, start)

	_, err := s.Borrow(context.Background(), 7, 1, start.Add(time.Hour))
	require.NoError(t, err)

	// Read again two days later; the loan is now past due.
	later := newService(f, start.Add(48*time.Hour))
	rows, err := later.ListMine(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, model.StatusOverdue, rows[0].Status)
}
