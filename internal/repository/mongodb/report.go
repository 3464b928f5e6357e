package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/woodtrack/sawmill/internal/domain/models"
)

// ReportStore archives daily warehouse reports.
type ReportStore struct {
	client *Client
}

func NewReportStore(client *Client) *ReportStore {
	return &ReportStore{client: client}
}

type dailyReportDoc struct {
	ID              string               `bson:"_id,omitempty"`
	Date            time.Time            `bson:"date"`
	WetLumberPieces int64                `bson:"wet_lumber_pieces"`
	DryLumberPieces int64                `bson:"dry_lumber_pieces"`
	WetLumberVolume primitive.Decimal128 `bson:"wet_lumber_volume"`
	DryLumberVolume primitive.Decimal128 `bson:"dry_lumber_volume"`
	LogVolume       primitive.Decimal128 `bson:"log_volume"`
	CreatedAt       time.Time            `bson:"created_at"`
}

func (s *ReportStore) SaveDailyReport(ctx context.Context, report *models.DailyReport) error {
	if report.ID == "" {
		report.ID = primitive.NewObjectID().Hex()
	}
	wet, err := toDecimal128(report.WetLumberVolume)
	if err != nil {
		return err
	}
	dry, err := toDecimal128(report.DryLumberVolume)
	if err != nil {
		return err
	}
	logs, err := toDecimal128(report.LogVolume)
	if err != nil {
		return err
	}
	doc := dailyReportDoc{
		ID:              report.ID,
		Date:            report.Date,
		WetLumberPieces: report.WetLumberPieces,
		DryLumberPieces: report.DryLumberPieces,
		WetLumberVolume: wet,
		DryLumberVolume: dry,
		LogVolume:       logs,
		CreatedAt:       report.CreatedAt,
	}
	if _, err := s.client.collection(collDailyReports).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("save daily report: %w", err)
	}
	return nil
}
