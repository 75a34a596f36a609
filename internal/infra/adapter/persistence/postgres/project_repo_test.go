package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

var projectCols = []string{
	"id", "name", "image_url", "about", "date", "github", "live",
	"is_new", "is_dev", "language_code", "created_at",
}

var projectCreated = time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

func sampleProject() *entity.Project {
	return &entity.Project{
		ID:           "p1",
		Name:         "Portfolio",
		ImageURL:     "https://images.example.com/portfolio.png",
		About:        "A personal portfolio site.",
		Date:         "2024-05",
		GitHub:       "https://github.com/example/portfolio",
		New:          true,
		Tech:         []string{"Go", "React"},
		LanguageCode: "en",
	}
}

/* ──────────────────────────────── 1. ListByLanguage ──────────────────────────────── */

func TestProjectRepo_ListByLanguage(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	p := sampleProject()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM portfolio_projects`)).
		WithArgs("en").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(p.ID, p.Name, p.ImageURL, p.About, p.Date, p.GitHub, nil,
				p.New, p.Dev, "en", projectCreated).
			AddRow("p2", "CLI", p.ImageURL, p.About, "2023-01", nil, nil,
				false, true, "en", projectCreated))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY pt.project_id, pt.position`)).
		WithArgs("en").
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "name"}).
			AddRow("p1", "Go").
			AddRow("p1", "React"))

	repo := postgres.NewProjectRepo(db)
	got, err := repo.ListByLanguage(context.Background(), "en")
	if err != nil {
		t.Fatalf("ListByLanguage err=%v", err)
	}

	p.CreatedAt = projectCreated
	want := []*entity.Project{p, {
		ID: "p2", Name: "CLI", ImageURL: p.ImageURL, About: p.About, Date: "2023-01",
		Dev: true, Tech: []string{}, LanguageCode: "en", CreatedAt: projectCreated,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProjectRepo_ListByLanguage_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM portfolio_projects`)).
		WithArgs("fr").
		WillReturnRows(sqlmock.NewRows(projectCols))

	repo := postgres.NewProjectRepo(db)
	got, err := repo.ListByLanguage(context.Background(), "fr")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("ListByLanguage = %v, %v; want empty slice", got, err)
	}
	// no tech query for an empty result
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. Create / Update ──────────────────────────────── */

func expectTech(mock sqlmock.Sqlmock, projectID string, names ...string) {
	for i, name := range names {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tech`)).
			WithArgs(sqlmock.AnyArg(), name).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-" + name))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO portfolio_project_tech`)).
			WithArgs(projectID, "t-"+name, i).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
}

func TestProjectRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	p := sampleProject()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO portfolio_projects`)).
		WithArgs(p.ID, p.Name, p.ImageURL, p.About, p.Date, p.GitHub, nil,
			true, false, "en").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(projectCreated))
	expectTech(mock, p.ID, "Go", "React")
	mock.ExpectCommit()

	repo := postgres.NewProjectRepo(db)
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if !p.CreatedAt.Equal(projectCreated) {
		t.Fatalf("CreatedAt = %v", p.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProjectRepo_Create_RollsBackOnTechError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	p := sampleProject()
	boom := errors.New("unique violation")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO portfolio_projects`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(projectCreated))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tech`)).
		WillReturnError(boom)
	mock.ExpectRollback()

	repo := postgres.NewProjectRepo(db)
	if err := repo.Create(context.Background(), p); !errors.Is(err, boom) {
		t.Fatalf("Create err=%v, want wrapped %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProjectRepo_Update_ReplacesTech(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	p := sampleProject()
	p.Tech = []string{"Rust"}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE portfolio_projects SET`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(projectCreated))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM portfolio_project_tech WHERE project_id = $1`)).
		WithArgs(p.ID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	expectTech(mock, p.ID, "Rust")
	mock.ExpectCommit()

	repo := postgres.NewProjectRepo(db)
	if err := repo.Update(context.Background(), p); err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProjectRepo_Update_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE portfolio_projects SET`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))
	mock.ExpectRollback()

	repo := postgres.NewProjectRepo(db)
	if err := repo.Update(context.Background(), sampleProject()); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("Update err=%v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. Get / Delete ──────────────────────────────── */

func TestProjectRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM portfolio_projects`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(projectCols))

	repo := postgres.NewProjectRepo(db)
	got, err := repo.Get(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("Get = %v, %v; want nil, nil", got, err)
	}
}

func TestProjectRepo_Delete_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM portfolio_projects`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewProjectRepo(db)
	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("Delete err=%v, want ErrNotFound", err)
	}
}
