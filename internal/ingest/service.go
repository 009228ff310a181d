// Package ingest drives the project create/update workflow: precondition
// checks, upload parsing, catalogue validation and the single write
// transaction that makes the result durable.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/scorecard/api/internal/apperr"
	"github.com/scorecard/api/internal/middleware"
	"github.com/scorecard/api/internal/model"
	"github.com/scorecard/api/internal/parser"
)

// Upload is one submitted file: its client-side name (the only identity
// retained after parsing) and raw decoded contents.
type Upload struct {
	Name string
	Data []byte
}

// UpsertInput carries one project create or update request into the
// pipeline.
type UpsertInput struct {
	ProjectID          int64 // ignored unless IsUpdate
	IsUpdate           bool
	UserID             int64
	Role               string
	Name               *string
	Finished           *bool
	SegmentNum         *int
	MetricFile         *Upload
	BitextFile         *Upload
	SpecificationsFile *Upload
}

type Service struct {
	db DB
}

func NewService(db DB) *Service {
	return &Service{db: db}
}

// Upsert runs the ingestion state machine. On create it returns the new
// project's id; on update it returns input.ProjectID. Any returned error
// is an *apperr.Error ready for the HTTP boundary; once the transaction
// has begun, any failure rolls the whole write back.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (int64, error) {
	stores := s.db.Stores()
	isAdmin := model.IsAdminRole(input.Role)

	imported, err := stores.Issues.Any(ctx)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if !imported {
		return 0, apperr.New(apperr.KindValidation, "Typology not yet imported. Please contact an administrator for help.")
	}

	if !input.IsUpdate {
		if !isAdmin {
			return 0, apperr.Forbidden()
		}
		if stringValue(input.Name) == "" || input.MetricFile == nil || input.BitextFile == nil {
			return 0, apperr.New(apperr.KindValidation, "Insufficient files submitted: Request requires a project name, metric file, and bi-text file")
		}
	}

	if input.IsUpdate && (input.MetricFile != nil || input.BitextFile != nil) {
		count, err := stores.Errors.CountByProjectID(ctx, input.ProjectID)
		if err != nil {
			return 0, apperr.Internal(err)
		}
		if count > 0 {
			return 0, apperr.New(apperr.KindValidation, "Changing the bi-text or metric files is not possible until all reported errors are removed.")
		}
	}

	attrs := map[string]interface{}{}
	if input.Name != nil && roleAllows(input.Role, "name") {
		attrs["name"] = *input.Name
	}
	if input.Finished != nil && roleAllows(input.Role, "finished") {
		attrs["finished"] = *input.Finished
	}
	if input.SegmentNum != nil && roleAllows(input.Role, "last_segment") {
		attrs["last_segment"] = *input.SegmentNum
	}

	var metric []parser.FlatIssue
	if input.MetricFile != nil && isAdmin {
		metric, err = parser.ParseMetricXML(input.MetricFile.Data)
		if err != nil {
			middleware.RecordParseFailure("metric")
			return 0, parseFailure("metric", err)
		}
		attrs["metric_file"] = input.MetricFile.Name
	}

	var bitext *parser.BitextResult
	if input.BitextFile != nil && isAdmin {
		bitext, err = parser.ParseBiColumnBitext(string(input.BitextFile.Data))
		if err != nil {
			middleware.RecordParseFailure("bitext")
			return 0, parseFailure("bi-text", err)
		}
		attrs["bitext_file"] = input.BitextFile.Name
		attrs["last_segment"] = 1
		attrs["source_word_count"] = bitext.SourceWordCount
		attrs["target_word_count"] = bitext.TargetWordCount
	}

	specifications := ""
	if input.SpecificationsFile != nil && isAdmin {
		specifications, err = parser.ParseSpecificationsXML(input.SpecificationsFile.Data)
		if err != nil {
			middleware.RecordParseFailure("specifications")
			return 0, parseFailure("specifications", err)
		}
		attrs["specifications_file"] = input.SpecificationsFile.Name
		attrs["specifications"] = specifications
	}

	projectID := input.ProjectID

	err = s.db.InTransaction(ctx, func(tx Stores) error {
		if !input.IsUpdate {
			project := &model.Project{
				Name:            stringValue(input.Name),
				MetricFile:      input.MetricFile.Name,
				BitextFile:      input.BitextFile.Name,
				Specifications:  specifications,
				SourceWordCount: bitext.SourceWordCount,
				TargetWordCount: bitext.TargetWordCount,
				LastSegment:     1,
			}
			if input.SpecificationsFile != nil {
				project.SpecificationsFile = input.SpecificationsFile.Name
			}

			if err := tx.Projects.Create(ctx, project); err != nil {
				return err
			}
			projectID = project.ID

			if err := tx.Projects.AddMembership(ctx, projectID, input.UserID); err != nil {
				return err
			}
		}

		if metric != nil {
			for _, entry := range metric {
				catalogued, err := tx.Issues.GetByID(ctx, entry.Issue)
				if err != nil {
					return err
				}
				if catalogued == nil {
					return apperr.Consistency("Issue %q does not exist in the typology", entry.Issue)
				}
				if !parentsMatch(catalogued.Parent, entry.Parent) {
					return apperr.Consistency("Issue %q does not have the parent issue %q", entry.Issue, parentLabel(entry.Parent))
				}

				if err := tx.Issues.CreateProjectIssue(ctx, &model.ProjectIssue{
					ProjectID: projectID,
					Issue:     entry.Issue,
					Display:   entry.Display,
				}); err != nil {
					return err
				}
			}
		}

		if bitext != nil {
			if input.IsUpdate {
				if err := tx.Segments.DeleteByProjectID(ctx, projectID); err != nil {
					return err
				}
			}
			if err := tx.Segments.BulkInsert(ctx, projectID, bitext.Segments); err != nil {
				return err
			}
		}

		if input.IsUpdate {
			if err := tx.Projects.UpdateAttributes(ctx, projectID, attrs); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		middleware.RecordIngestion(input.IsUpdate, false)
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return 0, appErr
		}
		log.Printf("ingest: transaction failed: %v", err)
		return 0, apperr.Internal(err)
	}

	middleware.RecordIngestion(input.IsUpdate, true)
	return projectID, nil
}

func parseFailure(file string, err error) error {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return apperr.Validation("Problem parsing %s file: %s", file, parseErr.Reason)
	}
	return apperr.Internal(fmt.Errorf("parsing %s file: %w", file, err))
}

func parentsMatch(catalogued, parsed *string) bool {
	if catalogued == nil || parsed == nil {
		return catalogued == nil && parsed == nil
	}
	return *catalogued == *parsed
}

func parentLabel(parent *string) string {
	if parent == nil {
		return ""
	}
	return *parent
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
