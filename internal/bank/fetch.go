package bank

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/mathdrill/internal/question"
)

// Topics lists the selectable quiz topics in display order.
func Topics() []string {
	return []string{
		"Algebra",
		"Combinatorics",
		"Calculus",
		"Number Theory",
		"Geometry",
		"Miscellaneous",
	}
}

// topicSource maps a topic to its backing store and optional subfield
// filter. Unlisted topics fall back to the unfiltered olympiad store.
type topicSource struct {
	calculus bool
	subfield string
}

var topicSources = map[string]topicSource{
	"Algebra":       {subfield: "Algebra"},
	"Combinatorics": {subfield: "Combinatorics"},
	"Calculus":      {calculus: true},
	"Number Theory": {subfield: "Number Theory"},
	"Geometry":      {subfield: "Geometry"},
	"Miscellaneous": {},
}

// Solution-length thresholds for the olympiad difficulty heuristic.
const (
	easySolutionMax = 200
	hardSolutionMin = 500
)

const (
	olympiadSelect = `
		SELECT id, subfield, problem, final_answer_json, answer_type, unit, solution
		FROM problems
		WHERE split = 'train'`

	calculusSelect = `
		SELECT id, problem, expected_answer, problem_type, problem_source
		FROM problems
		WHERE used_in_kaggle = 1`
)

// Fetch returns up to n questions for the topic: difficulty-labeled,
// concept-tagged, shuffled, with canonical answers. It over-fetches 2n
// random candidates so that rows with unusable answer payloads can be
// discarded without under-filling. Fewer than n usable rows is not an
// error; an empty result means no quiz can start from this topic.
func (s *Store) Fetch(ctx context.Context, topic string, n int) ([]question.Question, error) {
	if n <= 0 {
		return nil, nil
	}

	src := topicSources[topic]

	var (
		questions []question.Question
		err       error
	)
	if src.calculus {
		questions, err = s.fetchCalculus(ctx, 2*n)
	} else {
		questions, err = s.fetchOlympiad(ctx, src.subfield, 2*n)
	}
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if len(questions) > n {
		questions = questions[:n]
	}
	return questions, nil
}

func (s *Store) fetchOlympiad(ctx context.Context, subfield string, limit int) ([]question.Question, error) {
	query := olympiadSelect
	args := []any{}
	if subfield != "" {
		query += " AND subfield = ?"
		args = append(args, subfield)
	}
	query += " ORDER BY RANDOM() LIMIT ?"
	args = append(args, limit)

	rows, err := s.olympiad.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query olympiad problems: %w", err)
	}
	defer rows.Close()

	var questions []question.Question
	for rows.Next() {
		var (
			id                     int64
			sub, problem           sql.NullString
			answerJSON, answerType sql.NullString
			unit, solution         sql.NullString
		)
		if err := rows.Scan(&id, &sub, &problem, &answerJSON, &answerType, &unit, &solution); err != nil {
			return nil, fmt.Errorf("scan olympiad row: %w", err)
		}

		answer, ok := question.ExtractAnswer(answerJSON.String, answerType.String)
		if !ok {
			continue
		}

		questions = append(questions, question.Question{
			QuestionID:    "OLY_" + strconv.FormatInt(id, 10),
			QuestionType:  question.TypeNumerical,
			Difficulty:    olympiadDifficulty(solution.String),
			ConceptTags:   []string{conceptTag(sub.String)},
			QuestionText:  problem.String,
			CorrectAnswer: answer,
			AnswerType:    answerType.String,
			Unit:          unit.String,
			Solution:      solution.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate olympiad rows: %w", err)
	}
	return questions, nil
}

func (s *Store) fetchCalculus(ctx context.Context, limit int) ([]question.Question, error) {
	query := calculusSelect + " ORDER BY RANDOM() LIMIT ?"

	rows, err := s.calculus.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query calculus problems: %w", err)
	}
	defer rows.Close()

	var questions []question.Question
	for rows.Next() {
		var (
			id                  int64
			problem, answer     sql.NullString
			problemType, source sql.NullString
		)
		if err := rows.Scan(&id, &problem, &answer, &problemType, &source); err != nil {
			return nil, fmt.Errorf("scan calculus row: %w", err)
		}

		if answer.String == "" {
			continue
		}

		questions = append(questions, question.Question{
			QuestionID:    "CALC_" + strconv.FormatInt(id, 10),
			QuestionType:  question.TypeNumerical,
			Difficulty:    calculusDifficulty(source.String),
			ConceptTags:   []string{"CALCULUS", conceptTag(problemType.String)},
			QuestionText:  problem.String,
			CorrectAnswer: answer.String,
			AnswerType:    "expression",
			Unit:          "",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calculus rows: %w", err)
	}
	return questions, nil
}

// olympiadDifficulty labels a question by its solution length: short
// solutions read as easy, long ones as hard. Missing solutions are medium.
func olympiadDifficulty(solution string) question.Difficulty {
	if solution == "" {
		return question.DifficultyMedium
	}
	switch n := utf8.RuneCountInString(solution); {
	case n < easySolutionMax:
		return question.DifficultyEasy
	case n > hardSolutionMin:
		return question.DifficultyHard
	default:
		return question.DifficultyMedium
	}
}

// calculusDifficulty labels a question by substrings of its source field.
func calculusDifficulty(source string) question.Difficulty {
	s := strings.ToLower(source)
	switch {
	case strings.Contains(s, "easy"):
		return question.DifficultyEasy
	case strings.Contains(s, "hard"), strings.Contains(s, "amc"):
		return question.DifficultyHard
	default:
		return question.DifficultyMedium
	}
}

// conceptTag normalizes a store label into a concept tag,
// e.g. "Number Theory" → "NUMBER_THEORY".
func conceptTag(label string) string {
	if label == "" {
		return "GENERAL"
	}
	return strings.ReplaceAll(strings.ToUpper(label), " ", "_")
}

// TopicCounts reports how many questions each topic can draw from,
// applying the same filters as Fetch.
func (s *Store) TopicCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(topicSources))

	for topic, src := range topicSources {
		var (
			n   int
			err error
		)
		switch {
		case src.calculus:
			err = s.calculus.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM problems WHERE used_in_kaggle = 1`).Scan(&n)
		case src.subfield != "":
			err = s.olympiad.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM problems WHERE split = 'train' AND subfield = ?`, src.subfield).Scan(&n)
		default:
			err = s.olympiad.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM problems WHERE split = 'train'`).Scan(&n)
		}
		if err != nil {
			return nil, fmt.Errorf("count %s questions: %w", topic, err)
		}
		counts[topic] = n
	}
	return counts, nil
}
