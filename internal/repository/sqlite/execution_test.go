package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

func TestAppend(t *testing.T) {
	db := newTestDB(t)

	output := "42\n"
	exec := &model.Execution{
		UserID:   "clerk_abc",
		Language: "javascript",
		Code:     "console.log(42)",
		Output:   &output,
	}

	if err := db.Executions().Append(context.Background(), exec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if exec.ID == "" {
		t.Error("Append() did not set exec.ID")
	}
	if exec.CreatedAt.IsZero() {
		t.Error("Append() did not set exec.CreatedAt")
	}
}

func TestAppend_OptionalFieldsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	output := "ok"
	errText := "TypeError"
	cases := []struct {
		name   string
		output *string
		err    *string
	}{
		{"both absent", nil, nil},
		{"output only", &output, nil},
		{"error only", nil, &errText},
		{"both present", &output, &errText},
	}

	for _, tc := range cases {
		exec := &model.Execution{UserID: "u1", Language: "python", Code: "x", Output: tc.output, Error: tc.err}
		if err := db.Executions().Append(ctx, exec); err != nil {
			t.Fatalf("%s: Append() error = %v", tc.name, err)
		}
	}

	all, err := db.Executions().CollectAllByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("CollectAllByUser() error = %v", err)
	}
	if len(all) != len(cases) {
		t.Fatalf("collected %d executions, want %d", len(all), len(cases))
	}

	// Absent must stay absent and present must keep its value — NULL and ""
	// are different things on the way back out.
	var withOutput, withErr int
	for _, e := range all {
		if e.Output != nil {
			withOutput++
			if *e.Output != output {
				t.Errorf("Output = %q, want %q", *e.Output, output)
			}
		}
		if e.Error != nil {
			withErr++
			if *e.Error != errText {
				t.Errorf("Error = %q, want %q", *e.Error, errText)
			}
		}
	}
	if withOutput != 2 || withErr != 2 {
		t.Errorf("got %d outputs and %d errors, want 2 and 2", withOutput, withErr)
	}
}

func TestListByUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	first := appendTestExecution(t, db, "u1", "javascript")
	second := appendTestExecution(t, db, "u1", "python")
	appendTestExecution(t, db, "someone-else", "go")

	page, err := db.Executions().ListByUser(context.Background(), "u1", repository.PageOptions{})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(page.Executions) != 2 {
		t.Fatalf("got %d executions, want 2", len(page.Executions))
	}
	if page.Executions[0].ID != second.ID || page.Executions[1].ID != first.ID {
		t.Errorf("executions not in descending creation order: got [%s, %s]",
			page.Executions[0].ID, page.Executions[1].ID)
	}
	if page.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty for exhausted history", page.NextCursor)
	}
}

func TestListByUser_CursorResumption(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const total = 7
	for i := 0; i < total; i++ {
		appendTestExecution(t, db, "u1", "javascript")
	}

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		page, err := db.Executions().ListByUser(ctx, "u1",
			repository.PageOptions{Cursor: cursor, Limit: 3})
		if err != nil {
			t.Fatalf("ListByUser() error = %v", err)
		}
		for _, e := range page.Executions {
			if seen[e.ID] {
				t.Errorf("execution %s returned twice across pages", e.ID)
			}
			seen[e.ID] = true
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if len(seen) != total {
		t.Errorf("paged through %d executions, want %d (no skips)", len(seen), total)
	}
	if pages != 3 {
		t.Errorf("walked %d pages, want 3 (3+3+1)", pages)
	}
}

func TestListByUser_CursorIgnoresLaterAppends(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		appendTestExecution(t, db, "u1", "javascript")
	}

	page, err := db.Executions().ListByUser(ctx, "u1", repository.PageOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	// A record appended after the first page was cut sorts above the cursor
	// and must not leak into the resumed scan.
	late := appendTestExecution(t, db, "u1", "rust")

	rest, err := db.Executions().ListByUser(ctx, "u1",
		repository.PageOptions{Cursor: page.NextCursor, Limit: 10})
	if err != nil {
		t.Fatalf("ListByUser() resume error = %v", err)
	}
	for _, e := range rest.Executions {
		if e.ID == late.ID {
			t.Error("resumed page should not contain an execution appended after the cursor")
		}
	}
	if len(rest.Executions) != 2 {
		t.Errorf("resumed page has %d executions, want the remaining 2", len(rest.Executions))
	}
}

func TestListByUser_InvalidCursor(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Executions().ListByUser(context.Background(), "u1",
		repository.PageOptions{Cursor: "not-a-cursor!!"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCollectAllByUser_Empty(t *testing.T) {
	db := newTestDB(t)

	all, err := db.Executions().CollectAllByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("CollectAllByUser() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("got %d executions, want 0", len(all))
	}
}
