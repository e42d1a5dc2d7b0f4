package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mediscan/ml"
)

var database *sql.DB

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        risk_level TEXT NOT NULL,
        risk_score INTEGER NOT NULL,
        confidence INTEGER NOT NULL,
        model TEXT NOT NULL,
        prob_low REAL NOT NULL,
        prob_moderate REAL NOT NULL,
        prob_high REAL NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// PredictionRecord is one stored scoring outcome.
type PredictionRecord struct {
	ID            int64            `json:"id"`
	RiskLevel     string           `json:"riskLevel"`
	RiskScore     int              `json:"riskScore"`
	Confidence    int              `json:"confidence"`
	Model         string           `json:"model"`
	Probabilities ml.Probabilities `json:"probabilities"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// SavePrediction appends one scoring outcome to the audit table.
func SavePrediction(pred ml.Prediction) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO predictions (
            risk_level, risk_score, confidence, model,
            prob_low, prob_moderate, prob_high
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pred.RiskLevel, pred.RiskScore, pred.Confidence, pred.Model,
		pred.Probabilities.Low, pred.Probabilities.Moderate, pred.Probabilities.High)
	return err
}

// RecentPredictions returns up to limit latest records, newest first.
func RecentPredictions(limit int) ([]PredictionRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Query(`
        SELECT id, risk_level, risk_score, confidence, model,
               prob_low, prob_moderate, prob_high, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0, limit)
	for rows.Next() {
		var rec PredictionRecord
		err := rows.Scan(&rec.ID, &rec.RiskLevel, &rec.RiskScore, &rec.Confidence, &rec.Model,
			&rec.Probabilities.Low, &rec.Probabilities.Moderate, &rec.Probabilities.High, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
