package querybuilder

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/brandlens/brandlens-api/internal/database/migrations"
)

// newTestClient builds a client over an in-memory database with the full
// schema applied.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewClient(NewSQLExecutor(db))
}

func seedProfile(t *testing.T, client *Client, id, email string) {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	res := client.From("profiles").Insert(map[string]any{
		"id":         id,
		"email":      email,
		"brand_name": "Acme",
		"created_at": now,
		"updated_at": now,
	}).Execute(context.Background())
	if res.Err != nil {
		t.Fatalf("seed profile: %v", res.Err)
	}
}

func TestInsertThenSelect(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	seedProfile(t, client, "p1", "a@example.com")

	res := client.From("profiles").Select("id", "email").Eq("id", "p1").Execute(ctx)
	if res.Err != nil {
		t.Fatalf("select error = %v", res.Err)
	}
	rows, ok := res.Data.([]map[string]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("Data = %#v, want one row", res.Data)
	}
	if rows[0]["email"] != "a@example.com" {
		t.Errorf("email = %v", rows[0]["email"])
	}
}

func TestInsertGeneratesMissingID(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	now := time.Now().UTC().Format(time.RFC3339)
	res := client.From("profiles").Insert(map[string]any{
		"email":      "noid@example.com",
		"brand_name": "Acme",
		"created_at": now,
		"updated_at": now,
	}).Execute(ctx)
	if res.Err != nil {
		t.Fatalf("insert error = %v", res.Err)
	}

	inserted := res.Data.([]map[string]any)
	id, _ := inserted[0]["id"].(string)
	if id == "" {
		t.Fatal("inserted row missing generated id")
	}

	check := client.From("profiles").Eq("id", id).Single().Execute(ctx)
	if check.Err != nil {
		t.Fatalf("select error = %v", check.Err)
	}
}

func TestBooleanCoercionAllowList(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	now := time.Now().UTC().Format(time.RFC3339)
	res := client.From("profiles").Insert(map[string]any{
		"id":                   "p1",
		"email":                "b@example.com",
		"brand_name":           "Acme",
		"onboarding_completed": true,
		"is_admin":             false,
		"monthly_query_limit":  50,
		"created_at":           now,
		"updated_at":           now,
	}).Execute(ctx)
	if res.Err != nil {
		t.Fatalf("insert error = %v", res.Err)
	}

	single := client.From("profiles").Eq("id", "p1").Single().Execute(ctx)
	if single.Err != nil {
		t.Fatalf("select error = %v", single.Err)
	}
	row := single.Data.(map[string]any)

	if v, ok := row["onboarding_completed"].(bool); !ok || v != true {
		t.Errorf("onboarding_completed = %#v, want true", row["onboarding_completed"])
	}
	if v, ok := row["is_admin"].(bool); !ok || v != false {
		t.Errorf("is_admin = %#v, want false", row["is_admin"])
	}
	// Not on the allow-list: keeps its raw stored type.
	if _, ok := row["monthly_query_limit"].(bool); ok {
		t.Error("monthly_query_limit should not be coerced to bool")
	}
}

func TestSingleVersusMaybeSingleOnZeroRows(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	single := client.From("profiles").Eq("id", "absent").Single().Execute(ctx)
	if !errors.Is(single.Err, ErrNoRows) {
		t.Errorf("Single() err = %v, want ErrNoRows", single.Err)
	}
	if single.Data != nil {
		t.Errorf("Single() data = %#v, want nil", single.Data)
	}

	maybe := client.From("profiles").Eq("id", "absent").MaybeSingle().Execute(ctx)
	if maybe.Err != nil {
		t.Errorf("MaybeSingle() err = %v, want nil", maybe.Err)
	}
	if maybe.Data != nil {
		t.Errorf("MaybeSingle() data = %#v, want nil", maybe.Data)
	}
}

func TestFiltersAndOrderAndLimit(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		seedProfile(t, client, string(rune('a'+i)), email)
	}

	res := client.From("profiles").
		Select("id").
		Neq("id", "b").
		Order("id", false).
		Limit(1).
		Execute(ctx)
	if res.Err != nil {
		t.Fatalf("select error = %v", res.Err)
	}
	rows := res.Data.([]map[string]any)
	if len(rows) != 1 || rows[0]["id"] != "c" {
		t.Errorf("rows = %v, want single row id=c", rows)
	}

	in := client.From("profiles").In("id", []any{"a", "c"}).Order("id", true).Execute(ctx)
	if in.Err != nil {
		t.Fatalf("in select error = %v", in.Err)
	}
	inRows := in.Data.([]map[string]any)
	if len(inRows) != 2 || inRows[0]["id"] != "a" || inRows[1]["id"] != "c" {
		t.Errorf("in rows = %v", inRows)
	}

	empty := client.From("profiles").In("id", nil).Execute(ctx)
	if empty.Err != nil {
		t.Fatalf("empty-in select error = %v", empty.Err)
	}
	if rows := empty.Data.([]map[string]any); len(rows) != 0 {
		t.Errorf("empty membership matched %d rows, want 0", len(rows))
	}
}

func TestUpdateAppliesToMatchingRows(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	seedProfile(t, client, "p1", "one@x.com")
	seedProfile(t, client, "p2", "two@x.com")

	res := client.From("profiles").
		Eq("id", "p1").
		Update(map[string]any{"brand_name": "NewBrand", "onboarding_completed": true}).
		Execute(ctx)
	if res.Err != nil {
		t.Fatalf("update error = %v", res.Err)
	}

	updated := client.From("profiles").Eq("id", "p1").Single().Execute(ctx)
	row := updated.Data.(map[string]any)
	if row["brand_name"] != "NewBrand" {
		t.Errorf("brand_name = %v", row["brand_name"])
	}
	if v, _ := row["onboarding_completed"].(bool); !v {
		t.Error("onboarding_completed should be true after update")
	}

	other := client.From("profiles").Eq("id", "p2").Single().Execute(ctx)
	if other.Data.(map[string]any)["brand_name"] != "Acme" {
		t.Error("update leaked to non-matching row")
	}
}

func TestDeleteExecutesEagerly(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	seedProfile(t, client, "p1", "gone@x.com")

	res := client.From("profiles").Eq("id", "p1").Delete(ctx)
	if res.Err != nil {
		t.Fatalf("delete error = %v", res.Err)
	}

	check := client.From("profiles").Eq("id", "p1").MaybeSingle().Execute(ctx)
	if check.Err != nil || check.Data != nil {
		t.Errorf("row survived delete: data=%#v err=%v", check.Data, check.Err)
	}
}

func TestEmptyPayloadErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ins := client.From("profiles").Insert().Execute(ctx)
	if !errors.Is(ins.Err, ErrEmptyPayload) {
		t.Errorf("Insert() err = %v, want ErrEmptyPayload", ins.Err)
	}

	upd := client.From("profiles").Update(nil).Execute(ctx)
	if !errors.Is(upd.Err, ErrEmptyPayload) {
		t.Errorf("Update() err = %v, want ErrEmptyPayload", upd.Err)
	}
}

func TestSQLErrorsAreCapturedNotThrown(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res := client.From("no_such_table").Execute(ctx)
	if res.Err == nil {
		t.Error("expected error for missing table")
	}
	if res.Data != nil {
		t.Errorf("Data = %#v, want nil", res.Data)
	}
}

func TestInvalidIdentifiersRejected(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res := client.From("profiles; DROP TABLE profiles").Execute(ctx)
	if res.Err == nil {
		t.Error("expected error for invalid table name")
	}

	res = client.From("profiles").Eq("id = '' OR 1=1 --", "x").Execute(ctx)
	if res.Err == nil {
		t.Error("expected error for invalid field name")
	}
}

func TestInsertStagedWinsOverUpdateAndSelect(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	now := time.Now().UTC().Format(time.RFC3339)
	// Both insert and update staged: insert executes.
	res := client.From("profiles").
		Update(map[string]any{"brand_name": "ignored"}).
		Insert(map[string]any{
			"id": "p9", "email": "w@x.com", "brand_name": "Win",
			"created_at": now, "updated_at": now,
		}).
		Execute(ctx)
	if res.Err != nil {
		t.Fatalf("execute error = %v", res.Err)
	}

	check := client.From("profiles").Eq("id", "p9").Single().Execute(ctx)
	if check.Err != nil {
		t.Fatalf("select error = %v", check.Err)
	}
	if check.Data.(map[string]any)["brand_name"] != "Win" {
		t.Error("insert did not take precedence")
	}
}
