package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"perf360/internal/domain/directory"
	"perf360/internal/domain/evaluation"
	"perf360/internal/domain/scoring"
	"perf360/internal/platform/crypto"
)

type DirectoryAPI interface {
	FindEmployeeByID(ctx context.Context, employeeID string) (directory.Employee, error)
}

type Service struct {
	directory DirectoryAPI
	crypto    *crypto.Service
	storage   string
}

func New(dir DirectoryAPI, cryptoService *crypto.Service, storageDir string) *Service {
	if storageDir == "" {
		storageDir = "storage/reports"
	}
	return &Service{directory: dir, crypto: cryptoService, storage: storageDir}
}

// EvaluationSummaryPDF renders one evaluation's scores to a PDF on disk and
// returns the file path. When an encryption key is configured the file is
// stored encrypted with an .enc suffix.
func (s *Service) EvaluationSummaryPDF(ctx context.Context, eval evaluation.Evaluation) (string, error) {
	if err := os.MkdirAll(s.storage, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.storage, "evaluation-"+eval.ID+".pdf")

	subjectName := eval.EmployeeID
	if employee, err := s.directory.FindEmployeeByID(ctx, eval.EmployeeID); err == nil {
		subjectName = employee.FirstName + " " + employee.LastName
	}

	scores := scoring.CategoryScores(&eval)
	overall := scoring.OverallScore(scores)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Evaluation Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", subjectName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Type: %s", eval.EvaluationType))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		eval.Period.StartDate.Format("2006-01-02"), eval.Period.EndDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", eval.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Category Scores")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, score := range scores {
		if score.Responses == 0 {
			pdf.Cell(0, 8, fmt.Sprintf("%s (weight %d): no feedback", score.Name, score.Weight))
		} else {
			pdf.Cell(0, 8, fmt.Sprintf("%s (weight %d): %.2f over %d ratings", score.Name, score.Weight, score.Average, score.Responses))
		}
		pdf.Ln(7)
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	if overall > 0 {
		pdf.Cell(0, 8, fmt.Sprintf("Overall: %.2f (%s)", overall, scoring.Band(overall)))
	} else {
		pdf.Cell(0, 8, "Overall: no feedback submitted")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}

// EvaluationsCSV streams one row per evaluation with progress and overall
// score columns.
func (s *Service) EvaluationsCSV(w io.Writer, evals []evaluation.Evaluation) error {
	writer := csv.NewWriter(w)
	header := []string{"id", "employeeId", "type", "status", "periodStart", "periodEnd", "evaluators", "progress", "overallScore"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := range evals {
		eval := &evals[i]
		overall := scoring.OverallScore(scoring.CategoryScores(eval))
		row := []string{
			eval.ID,
			eval.EmployeeID,
			eval.EvaluationType,
			eval.Status,
			eval.Period.StartDate.Format("2006-01-02"),
			eval.Period.EndDate.Format("2006-01-02"),
			strconv.Itoa(len(eval.Evaluators)),
			strconv.FormatFloat(eval.Progress(), 'f', 1, 64),
			strconv.FormatFloat(overall, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
