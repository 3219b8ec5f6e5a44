package usage

import (
	"log/slog"
	"time"

	"github.com/molubot/molubot/internal/config"
	"github.com/molubot/molubot/internal/store"
)

// Per-token rates in USD. Input and output are billed separately.
const (
	inputRate  = 3.0 / 1_000_000
	outputRate = 15.0 / 1_000_000
)

// Record is one completed LLM call. Records are append-only and never
// mutated after being written.
type Record struct {
	Date         time.Time `json:"date"`
	Room         string    `json:"room"`
	Task         string    `json:"task"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
}

type document struct {
	Records []Record `json:"records"`
}

// Summary aggregates the current calendar month.
type Summary struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	TotalCost    float64
}

// Ledger records token usage per room and task, backed by a JSON file.
// All date arithmetic uses KST.
type Ledger struct {
	file      *store.JSONFile
	estimator Estimator
	now       func() time.Time
}

func New(path string, estimator Estimator) *Ledger {
	return &Ledger{
		file:      store.NewJSONFile(path),
		estimator: estimator,
		now:       time.Now,
	}
}

// Record appends a usage record. Write failures are logged and swallowed;
// telemetry must never abort message handling.
func (l *Ledger) Record(room, task string, inputTokens, outputTokens int) {
	doc := document{}
	err := l.file.Update(&doc, func() error {
		doc.Records = append(doc.Records, Record{
			Date:         l.now().In(config.KST),
			Room:         room,
			Task:         task,
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			Cost:         float64(inputTokens)*inputRate + float64(outputTokens)*outputRate,
		})
		return nil
	})
	if err != nil {
		slog.Warn("usage record failed", "room", room, "task", task, "error", err)
	}
}

// MonthlySummary sums every record dated in the current KST calendar month.
func (l *Ledger) MonthlySummary() (Summary, error) {
	doc := document{}
	if err := l.file.Load(&doc); err != nil {
		return Summary{}, err
	}

	now := l.now().In(config.KST)
	var s Summary
	for _, r := range doc.Records {
		d := r.Date.In(config.KST)
		if d.Year() != now.Year() || d.Month() != now.Month() {
			continue
		}
		s.InputTokens += r.InputTokens
		s.OutputTokens += r.OutputTokens
		s.TotalCost += r.Cost
	}
	s.TotalTokens = s.InputTokens + s.OutputTokens
	return s, nil
}

// Prediction is the estimator's extrapolation for the full current month.
type Prediction struct {
	Tokens     int
	Cost       float64
	Confidence float64
}

// Predict extrapolates this month's total usage from the daily totals seen
// so far. Returns ErrInsufficientData unless at least seven distinct days
// have recorded usage.
func (l *Ledger) Predict() (Prediction, error) {
	doc := document{}
	if err := l.file.Load(&doc); err != nil {
		return Prediction{}, err
	}

	now := l.now().In(config.KST)
	daily := map[int]int{}
	var totalTokens int
	var totalCost float64
	for _, r := range doc.Records {
		d := r.Date.In(config.KST)
		if d.Year() != now.Year() || d.Month() != now.Month() {
			continue
		}
		tokens := r.InputTokens + r.OutputTokens
		daily[d.Day()] += tokens
		totalTokens += tokens
		totalCost += r.Cost
	}
	if len(daily) < MinDays {
		return Prediction{}, ErrInsufficientData
	}

	points := make([]Point, 0, len(daily))
	cumulative := 0
	for day := 1; day <= now.Day(); day++ {
		tokens, ok := daily[day]
		if !ok {
			continue
		}
		cumulative += tokens
		points = append(points, Point{X: float64(day), Y: float64(cumulative)})
	}

	fit, err := l.estimator.Fit(points)
	if err != nil {
		return Prediction{}, err
	}

	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, config.KST).Day()
	predicted := fit.Slope*float64(daysInMonth) + fit.Intercept
	if predicted < float64(totalTokens) {
		predicted = float64(totalTokens)
	}

	costPerToken := 0.0
	if totalTokens > 0 {
		costPerToken = totalCost / float64(totalTokens)
	}
	return Prediction{
		Tokens:     int(predicted),
		Cost:       predicted * costPerToken,
		Confidence: fit.R2,
	}, nil
}
