package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/misd-it/misdesk/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO department (name) VALUES ($1)
        RETURNING department_id, created_at`
	return r.pool.QueryRow(ctx, query, dept.Name).Scan(&dept.ID, &dept.CreatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `UPDATE department SET name=$1 WHERE department_id=$2`
	cmd, err := r.pool.Exec(ctx, query, dept.Name, dept.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM department WHERE department_id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	const query = `SELECT department_id, name, created_at FROM department WHERE department_id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(&dept.ID, &dept.Name, &dept.CreatedAt); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `SELECT department_id, name, created_at FROM department ORDER BY department_id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

// FilerRepository manages filer persistence.
type FilerRepository interface {
	Create(ctx context.Context, filer *domain.Filer) error
	Update(ctx context.Context, filer *domain.Filer) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Filer, error)
	List(ctx context.Context) ([]domain.Filer, error)
}

type filerRepository struct {
	pool *pgxpool.Pool
}

// NewFilerRepository builds the repository.
func NewFilerRepository(pool *pgxpool.Pool) FilerRepository {
	return &filerRepository{pool: pool}
}

func (r *filerRepository) Create(ctx context.Context, filer *domain.Filer) error {
	const query = `
        INSERT INTO filer (name) VALUES ($1)
        RETURNING filer_id, created_at`
	return r.pool.QueryRow(ctx, query, filer.Name).Scan(&filer.ID, &filer.CreatedAt)
}

func (r *filerRepository) Update(ctx context.Context, filer *domain.Filer) error {
	const query = `UPDATE filer SET name=$1 WHERE filer_id=$2`
	cmd, err := r.pool.Exec(ctx, query, filer.Name, filer.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *filerRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM filer WHERE filer_id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *filerRepository) GetByID(ctx context.Context, id int64) (*domain.Filer, error) {
	const query = `SELECT filer_id, name, created_at FROM filer WHERE filer_id=$1`
	var filer domain.Filer
	if err := r.pool.QueryRow(ctx, query, id).Scan(&filer.ID, &filer.Name, &filer.CreatedAt); err != nil {
		return nil, err
	}
	return &filer, nil
}

func (r *filerRepository) List(ctx context.Context) ([]domain.Filer, error) {
	const query = `SELECT filer_id, name, created_at FROM filer ORDER BY filer_id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Filer
	for rows.Next() {
		var filer domain.Filer
		if err := rows.Scan(&filer.ID, &filer.Name, &filer.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, filer)
	}
	return result, rows.Err()
}
