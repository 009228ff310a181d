package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorecard/api/internal/apperr"
	"github.com/scorecard/api/internal/model"
)

type fakeTypologyStore struct {
	imported      bool
	catalogue     map[string]*model.Issue
	projectIssues []model.ProjectIssue
}

func (f *fakeTypologyStore) Any(ctx context.Context) (bool, error) {
	return f.imported, nil
}

func (f *fakeTypologyStore) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	return f.catalogue[id], nil
}

func (f *fakeTypologyStore) CreateProjectIssue(ctx context.Context, projectIssue *model.ProjectIssue) error {
	f.projectIssues = append(f.projectIssues, *projectIssue)
	return nil
}

type fakeProjectStore struct {
	created     []model.Project
	updates     map[string]interface{}
	memberships [][2]int64
	nextID      int64
}

func (f *fakeProjectStore) Create(ctx context.Context, project *model.Project) error {
	f.nextID++
	project.ID = f.nextID
	f.created = append(f.created, *project)
	return nil
}

func (f *fakeProjectStore) UpdateAttributes(ctx context.Context, id int64, attrs map[string]interface{}) error {
	f.updates = attrs
	return nil
}

func (f *fakeProjectStore) AddMembership(ctx context.Context, projectID, userID int64) error {
	f.memberships = append(f.memberships, [2]int64{projectID, userID})
	return nil
}

type fakeSegmentStore struct {
	deleted  []int64
	inserted []model.SegmentPair
}

func (f *fakeSegmentStore) DeleteByProjectID(ctx context.Context, projectID int64) error {
	f.deleted = append(f.deleted, projectID)
	return nil
}

func (f *fakeSegmentStore) BulkInsert(ctx context.Context, projectID int64, pairs []model.SegmentPair) error {
	f.inserted = append(f.inserted, pairs...)
	return nil
}

type fakeErrorStore struct {
	count int64
}

func (f *fakeErrorStore) CountByProjectID(ctx context.Context, projectID int64) (int64, error) {
	return f.count, nil
}

// fakeDB runs "transactions" against the same fakes and remembers whether
// the callback asked for a rollback.
type fakeDB struct {
	stores     Stores
	rolledBack bool
}

func (f *fakeDB) Stores() Stores {
	return f.stores
}

func (f *fakeDB) InTransaction(ctx context.Context, fn func(stores Stores) error) error {
	if err := fn(f.stores); err != nil {
		f.rolledBack = true
		return err
	}
	return nil
}

func newFakeDB() (*fakeDB, *fakeTypologyStore, *fakeProjectStore, *fakeSegmentStore, *fakeErrorStore) {
	issues := &fakeTypologyStore{
		imported: true,
		catalogue: map[string]*model.Issue{
			"accuracy":       {ID: "accuracy"},
			"mistranslation": {ID: "mistranslation", Parent: strPtr("accuracy")},
		},
	}
	projects := &fakeProjectStore{}
	segments := &fakeSegmentStore{}
	errs := &fakeErrorStore{}

	db := &fakeDB{stores: Stores{
		Issues:   issues,
		Projects: projects,
		Segments: segments,
		Errors:   errs,
	}}
	return db, issues, projects, segments, errs
}

func strPtr(s string) *string {
	return &s
}

const validMetric = `<issues>
  <issue id="accuracy" display="yes">
    <name>Accuracy</name>
    <issue id="mistranslation" display="no">
      <name>Mistranslation</name>
    </issue>
  </issue>
</issues>`

const validBitext = "Source\tTarget\nThe cat sat.\tLe chat s'assit.\nIt rained.\tIl pleuvait.\n"

func createInput() UpsertInput {
	return UpsertInput{
		UserID:     7,
		Role:       model.RoleAdmin,
		Name:       strPtr("Demo project"),
		MetricFile: &Upload{Name: "metric.xml", Data: []byte(validMetric)},
		BitextFile: &Upload{Name: "bitext.txt", Data: []byte(validBitext)},
	}
}

func TestUpsertCreate(t *testing.T) {
	t.Run("creates the project, membership, catalogue links and segments", func(t *testing.T) {
		db, issues, projects, segments, _ := newFakeDB()
		svc := NewService(db)

		id, err := svc.Upsert(context.Background(), createInput())
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		require.Len(t, projects.created, 1)
		created := projects.created[0]
		assert.Equal(t, "Demo project", created.Name)
		assert.Equal(t, "metric.xml", created.MetricFile)
		assert.Equal(t, "bitext.txt", created.BitextFile)
		assert.Equal(t, 1, created.LastSegment)
		assert.Equal(t, 5, created.SourceWordCount)
		assert.Equal(t, 5, created.TargetWordCount)

		assert.Equal(t, [][2]int64{{1, 7}}, projects.memberships)

		require.Len(t, issues.projectIssues, 2)
		assert.Equal(t, "accuracy", issues.projectIssues[0].Issue)
		assert.True(t, issues.projectIssues[0].Display)
		assert.Equal(t, "mistranslation", issues.projectIssues[1].Issue)
		assert.False(t, issues.projectIssues[1].Display)

		require.Len(t, segments.inserted, 2)
		assert.Equal(t, "The cat sat.", segments.inserted[0].Source)
		assert.Equal(t, "Il pleuvait.", segments.inserted[1].Target)
	})

	t.Run("captures specifications text when the file is submitted", func(t *testing.T) {
		db, _, projects, _, _ := newFakeDB()
		svc := NewService(db)

		input := createInput()
		input.SpecificationsFile = &Upload{
			Name: "specs.xml",
			Data: []byte(`<specifications><text>Formal register.</text></specifications>`),
		}

		_, err := svc.Upsert(context.Background(), input)
		require.NoError(t, err)

		require.Len(t, projects.created, 1)
		assert.Equal(t, "specs.xml", projects.created[0].SpecificationsFile)
		assert.Equal(t, "Formal register.", projects.created[0].Specifications)
	})

	t.Run("refuses creation when the bi-text or metric file is absent", func(t *testing.T) {
		for _, missing := range []string{"metric", "bitext", "name"} {
			t.Run(missing, func(t *testing.T) {
				db, _, projects, segments, _ := newFakeDB()
				svc := NewService(db)

				input := createInput()
				switch missing {
				case "metric":
					input.MetricFile = nil
				case "bitext":
					input.BitextFile = nil
				case "name":
					input.Name = nil
				}

				_, err := svc.Upsert(context.Background(), input)
				require.Error(t, err)

				assert.Equal(t, "Insufficient files submitted: Request requires a project name, metric file, and bi-text file", apperr.ClientMessage(err))
				assert.Equal(t, 400, apperr.Status(err))
				assert.Empty(t, projects.created)
				assert.Empty(t, segments.inserted)
			})
		}
	})

	t.Run("refuses creation by non-admin callers", func(t *testing.T) {
		db, _, projects, _, _ := newFakeDB()
		svc := NewService(db)

		input := createInput()
		input.Role = model.RoleUser

		_, err := svc.Upsert(context.Background(), input)
		require.Error(t, err)

		assert.Equal(t, 403, apperr.Status(err))
		assert.Empty(t, projects.created)
	})

	t.Run("refuses any write before the typology is imported", func(t *testing.T) {
		db, issues, projects, _, _ := newFakeDB()
		issues.imported = false
		svc := NewService(db)

		_, err := svc.Upsert(context.Background(), createInput())
		require.Error(t, err)

		assert.Equal(t, "Typology not yet imported. Please contact an administrator for help.", apperr.ClientMessage(err))
		assert.Equal(t, 400, apperr.Status(err))
		assert.Empty(t, projects.created)
	})

	t.Run("rolls back when a metric issue is missing from the typology", func(t *testing.T) {
		db, issues, _, _, _ := newFakeDB()
		delete(issues.catalogue, "mistranslation")
		svc := NewService(db)

		_, err := svc.Upsert(context.Background(), createInput())
		require.Error(t, err)

		assert.True(t, db.rolledBack)
		assert.Contains(t, apperr.ClientMessage(err), `Issue "mistranslation" does not exist in the typology`)
	})

	t.Run("rolls back when a metric issue disagrees about its parent", func(t *testing.T) {
		db, issues, _, _, _ := newFakeDB()
		issues.catalogue["mistranslation"].Parent = strPtr("fluency")
		svc := NewService(db)

		_, err := svc.Upsert(context.Background(), createInput())
		require.Error(t, err)

		assert.True(t, db.rolledBack)
		assert.Contains(t, apperr.ClientMessage(err), `Issue "mistranslation" does not have the parent issue "accuracy"`)
	})

	t.Run("reports the bad line of a malformed bi-text file", func(t *testing.T) {
		db, _, _, _, _ := newFakeDB()
		svc := NewService(db)

		input := createInput()
		input.BitextFile = &Upload{Name: "bitext.txt", Data: []byte("missing a tab\n")}

		_, err := svc.Upsert(context.Background(), input)
		require.Error(t, err)

		msg := apperr.ClientMessage(err)
		assert.Contains(t, msg, "Problem parsing bi-text file:")
		assert.Contains(t, msg, "line 1")
	})

	t.Run("reports metric parse failures with the file name", func(t *testing.T) {
		db, _, _, _, _ := newFakeDB()
		svc := NewService(db)

		input := createInput()
		input.MetricFile = &Upload{Name: "metric.xml", Data: []byte("<issues></issues>")}

		_, err := svc.Upsert(context.Background(), input)
		require.Error(t, err)

		assert.Contains(t, apperr.ClientMessage(err), "Problem parsing metric file:")
	})
}

func TestUpsertUpdate(t *testing.T) {
	t.Run("replacing the bi-text wipes old segments and resets the bookmark", func(t *testing.T) {
		db, _, projects, segments, _ := newFakeDB()
		svc := NewService(db)

		input := UpsertInput{
			ProjectID:  42,
			IsUpdate:   true,
			UserID:     7,
			Role:       model.RoleAdmin,
			BitextFile: &Upload{Name: "v2.txt", Data: []byte("a\tb\nc\td\ne\tf\n")},
		}

		id, err := svc.Upsert(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)

		assert.Equal(t, []int64{42}, segments.deleted)
		assert.Len(t, segments.inserted, 3)

		require.NotNil(t, projects.updates)
		assert.Equal(t, "v2.txt", projects.updates["bitext_file"])
		assert.Equal(t, 1, projects.updates["last_segment"])
		assert.Equal(t, 3, projects.updates["source_word_count"])
	})

	t.Run("refuses file replacement while errors exist", func(t *testing.T) {
		db, _, _, segments, errs := newFakeDB()
		errs.count = 2
		svc := NewService(db)

		input := UpsertInput{
			ProjectID:  42,
			IsUpdate:   true,
			Role:       model.RoleAdmin,
			BitextFile: &Upload{Name: "v2.txt", Data: []byte("a\tb\n")},
		}

		_, err := svc.Upsert(context.Background(), input)
		require.Error(t, err)

		assert.Equal(t, "Changing the bi-text or metric files is not possible until all reported errors are removed.", apperr.ClientMessage(err))
		assert.Empty(t, segments.deleted)
	})

	t.Run("attribute-only updates are allowed while errors exist", func(t *testing.T) {
		db, _, projects, _, errs := newFakeDB()
		errs.count = 2
		svc := NewService(db)

		finished := true
		input := UpsertInput{
			ProjectID: 42,
			IsUpdate:  true,
			Role:      model.RoleUser,
			Finished:  &finished,
		}

		_, err := svc.Upsert(context.Background(), input)
		require.NoError(t, err)

		require.NotNil(t, projects.updates)
		assert.Equal(t, true, projects.updates["finished"])
	})

	t.Run("non-admins cannot rename a project", func(t *testing.T) {
		db, _, projects, _, _ := newFakeDB()
		svc := NewService(db)

		segNum := 5
		input := UpsertInput{
			ProjectID:  42,
			IsUpdate:   true,
			Role:       model.RoleUser,
			Name:       strPtr("Sneaky rename"),
			SegmentNum: &segNum,
		}

		_, err := svc.Upsert(context.Background(), input)
		require.NoError(t, err)

		require.NotNil(t, projects.updates)
		_, renamed := projects.updates["name"]
		assert.False(t, renamed)
		assert.Equal(t, 5, projects.updates["last_segment"])
	})

	t.Run("non-admin file uploads are ignored", func(t *testing.T) {
		db, _, _, segments, _ := newFakeDB()
		svc := NewService(db)

		input := UpsertInput{
			ProjectID:  42,
			IsUpdate:   true,
			Role:       model.RoleUser,
			BitextFile: &Upload{Name: "v2.txt", Data: []byte("a\tb\n")},
		}

		_, err := svc.Upsert(context.Background(), input)
		require.NoError(t, err)

		assert.Empty(t, segments.deleted)
		assert.Empty(t, segments.inserted)
	})
}
