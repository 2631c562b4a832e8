package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
)

// QuestionRepository reads the financial item question bank
type QuestionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(db DBTX) *QuestionRepository {
	return &QuestionRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CountActiveQuestions counts questions that are not soft-deleted
func (r *QuestionRepository) CountActiveQuestions(ctx context.Context) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("financial_items fi").
		Where(squirrel.Eq{"fi.is_active": true}).
		ToSql()
	if err != nil {
		return 0, storeError("count_questions", err, nil)
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, storeError("count_questions", err, nil)
	}
	return total, nil
}

// AggregateQuestionsByLevel groups active questions by level
func (r *QuestionRepository) AggregateQuestionsByLevel(ctx context.Context) ([]reporting.QuestionAggregate, error) {
	query, args, err := r.sb.Select(
		"fi.level",
		"COUNT(*)",
		"COALESCE(SUM(fi.usage_count), 0)",
		"COALESCE(SUM(fi.correct_answer_rate), 0)",
	).
		From("financial_items fi").
		Where(squirrel.Eq{"fi.is_active": true}).
		GroupBy("fi.level").
		OrderBy("fi.level ASC").
		ToSql()
	if err != nil {
		return nil, storeError("aggregate_questions", err, nil)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("aggregate_questions", err, nil)
	}
	defer rows.Close()

	groups := make([]reporting.QuestionAggregate, 0)
	for rows.Next() {
		var g reporting.QuestionAggregate
		if err := rows.Scan(&g.Level, &g.Questions, &g.SumUsage, &g.SumCorrectRate); err != nil {
			return nil, storeError("aggregate_questions", err, nil)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("aggregate_questions", err, nil)
	}
	return groups, nil
}
