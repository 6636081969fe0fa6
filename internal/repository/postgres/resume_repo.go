package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"resume-hub/internal/domain"
	"resume-hub/internal/search"
	"resume-hub/pkg/apperror"
)

const resumeColumns = `id, owner_id, name, email, role, experience, skills, projects, resume_text, created_at, updated_at`

type resumeRepo struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepo{db: db}
}

func scanResume(row pgx.Row) (*domain.Resume, error) {
	var (
		r      domain.Resume
		skills []string
	)
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Email, &r.Role, &r.Experience,
		pq.Array(&skills), &r.Projects, &r.ResumeText, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Skills = domain.SkillSet(skills)
	if r.Skills == nil {
		r.Skills = domain.SkillSet{}
	}
	return &r, nil
}

func (r *resumeRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE owner_id = $1`
	res, err := scanResume(r.db.QueryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return res, nil
}

func (r *resumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	query := `INSERT INTO resumes (` + resumeColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		resume.ID, resume.OwnerID, resume.Name, resume.Email, resume.Role, string(resume.Experience),
		pq.Array([]string(resume.Skills)), resume.Projects, resume.ResumeText, resume.CreatedAt, resume.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("candidate already has a resume")
		}
		return apperror.Internal(err)
	}
	return nil
}

// lockResume loads a resume row and holds its lock for the rest of tx.
func lockResume(ctx context.Context, tx pgx.Tx, id string) (*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1 FOR UPDATE`
	res, err := scanResume(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, apperror.NotFound("resume not found")
		}
		return nil, apperror.Internal(err)
	}
	return res, nil
}

func (r *resumeRepo) Update(ctx context.Context, id string, mutate func(*domain.Resume) error) (*domain.Resume, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	old, err := lockResume(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	updated := old.Clone()
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.ID = old.ID
	updated.OwnerID = old.OwnerID
	updated.CreatedAt = old.CreatedAt

	query := `UPDATE resumes
              SET name = $2, email = $3, role = $4, experience = $5, skills = $6,
                  projects = $7, resume_text = $8, updated_at = $9
              WHERE id = $1`
	_, err = tx.Exec(ctx, query,
		updated.ID, updated.Name, updated.Email, updated.Role, string(updated.Experience),
		pq.Array([]string(updated.Skills)), updated.Projects, updated.ResumeText, updated.UpdatedAt,
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	return &updated, nil
}

func (r *resumeRepo) Delete(ctx context.Context, id string, check func(*domain.Resume) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	old, err := lockResume(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := check(old); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id); err != nil {
		return apperror.Internal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Search runs the count and the page query in one read-only snapshot.
func (r *resumeRepo) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Resume, int64, error) {
	sq := buildSearchQueries(q)

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	var total int64
	if err := tx.QueryRow(ctx, sq.count, sq.args...).Scan(&total); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	items := make([]domain.Resume, 0)
	if !sq.pageReachable(total) {
		return items, total, nil
	}

	rows, err := tx.Query(ctx, sq.page, sq.pageArgs()...)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	defer rows.Close()

	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, 0, apperror.Internal(err)
		}
		items = append(items, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

// searchQueries holds the SQL for one search: the count, the page select and
// the shared filter arguments. LIMIT and OFFSET follow the filter arguments.
type searchQueries struct {
	count    string
	page     string
	args     []interface{}
	limit    int
	offset   int64
	offsetOK bool
}

func buildSearchQueries(q domain.SearchQuery) searchQueries {
	where, args := buildSearchConditions(q.Filter)
	offset, ok := search.Offset(q.Page, q.PageSize)

	argIndex := len(args) + 1
	return searchQueries{
		count: `SELECT COUNT(*) FROM resumes` + where,
		page: fmt.Sprintf(`SELECT %s FROM resumes%s ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d`,
			resumeColumns, where, argIndex, argIndex+1),
		args:     args,
		limit:    q.PageSize,
		offset:   offset,
		offsetOK: ok,
	}
}

// pageReachable is false when the page starts at or past total, including
// pages whose offset overflows.
func (sq searchQueries) pageReachable(total int64) bool {
	return sq.offsetOK && total > 0 && sq.offset < total
}

func (sq searchQueries) pageArgs() []interface{} {
	out := make([]interface{}, 0, len(sq.args)+2)
	out = append(out, sq.args...)
	return append(out, sq.limit, sq.offset)
}

func (r *resumeRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// buildSearchConditions renders the filter as a WHERE clause (with a leading
// space, or empty) and its positional arguments.
func buildSearchConditions(f domain.SearchFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
		argIndex   = 1
	)

	if f.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%[1]d OR email ILIKE $%[1]d OR role ILIKE $%[1]d OR projects ILIKE $%[1]d OR resume_text ILIKE $%[1]d)",
			argIndex))
		args = append(args, likePattern(f.Query))
		argIndex++
	}

	if terms := search.Compile(f).SkillTerms(); len(terms) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(skills) AS s(skill) WHERE lower(s.skill) = ANY($%d))", argIndex))
		args = append(args, pq.Array(terms))
		argIndex++
	}

	if f.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role ILIKE $%d", argIndex))
		args = append(args, likePattern(f.Role))
		argIndex++
	}

	if f.Experience != "" {
		conditions = append(conditions, fmt.Sprintf("experience = $%d", argIndex))
		args = append(args, string(f.Experience))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring ILIKE, escaping its wildcards.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// isInvalidText matches SQLSTATE 22P02, raised when a non-uuid id reaches a uuid column.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}
