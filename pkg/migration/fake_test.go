package migration

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/models"
)

type fakeIssue struct {
	number   int
	nodeID   string
	title    string
	body     string
	labels   []string
	comments []string
}

// fakeGitHub is an in-memory GitHub double. Default behavior succeeds and
// records state; per-operation hooks inject failures.
type fakeGitHub struct {
	mu         sync.Mutex
	nextNumber int
	issues     []*fakeIssue
	labels     map[string]string
	field      models.StatusField
	items      map[int]string    // issue number -> project item id
	statuses   map[string]string // project item id -> option id

	createIssueHook func(title string) error
	batchHook       func(bodies []string) error
	optionHook      func(name string) error
	verifyHook      func() error
	deleteHook      func(nodeID string) error

	projectIssues []models.ProjectIssue
	deletedNodes  []string

	batchCalls      [][]string
	restCommentCalls int
}

var _ GitHub = (*fakeGitHub)(nil)

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		nextNumber: 1,
		labels:     map[string]string{},
		field:      models.StatusField{ProjectID: "PRJ1", FieldID: "FLD1"},
		items:      map[int]string{},
		statuses:   map[string]string{},
	}
}

func (f *fakeGitHub) issueByNumber(number int) *fakeIssue {
	for _, is := range f.issues {
		if is.number == number {
			return is
		}
	}
	return nil
}

func (f *fakeGitHub) VerifyAccess(ctx context.Context) error {
	if f.verifyHook != nil {
		return f.verifyHook()
	}
	return nil
}

func (f *fakeGitHub) SearchIssueByTitle(ctx context.Context, title string) (*models.IssueRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, is := range f.issues {
		if strings.TrimSpace(is.title) == strings.TrimSpace(title) {
			return &models.IssueRef{Number: is.number, NodeID: is.nodeID, Title: is.title}, nil
		}
	}
	return nil, nil
}

func (f *fakeGitHub) ListIssueComments(ctx context.Context, issueNumber int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	is := f.issueByNumber(issueNumber)
	if is == nil {
		return nil, fmt.Errorf("no issue #%d", issueNumber)
	}
	return append([]string(nil), is.comments...), nil
}

func (f *fakeGitHub) CreateIssue(ctx context.Context, title, body string, labels []string) (*models.IssueRef, error) {
	if f.createIssueHook != nil {
		if err := f.createIssueHook(title); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	is := &fakeIssue{
		number: f.nextNumber,
		nodeID: fmt.Sprintf("NODE%d", f.nextNumber),
		title:  title,
		body:   body,
		labels: append([]string(nil), labels...),
	}
	f.nextNumber++
	f.issues = append(f.issues, is)
	return &models.IssueRef{Number: is.number, NodeID: is.nodeID, Title: is.title}, nil
}

func (f *fakeGitHub) AddComment(ctx context.Context, issueNumber int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restCommentCalls++
	is := f.issueByNumber(issueNumber)
	if is == nil {
		return fmt.Errorf("no issue #%d", issueNumber)
	}
	is.comments = append(is.comments, body)
	return nil
}

func (f *fakeGitHub) AddCommentBatch(ctx context.Context, issueNodeID string, bodies []string) error {
	f.mu.Lock()
	f.batchCalls = append(f.batchCalls, append([]string(nil), bodies...))
	f.mu.Unlock()
	if f.batchHook != nil {
		if err := f.batchHook(bodies); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, is := range f.issues {
		if is.nodeID == issueNodeID {
			is.comments = append(is.comments, bodies...)
			return nil
		}
	}
	return fmt.Errorf("no issue with node id %s", issueNodeID)
}

func (f *fakeGitHub) EnsureLabel(ctx context.Context, name, color, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels[name] = color
	return nil
}

func (f *fakeGitHub) StatusField(ctx context.Context) (*models.StatusField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldCopy(), nil
}

func (f *fakeGitHub) CreateStatusOption(ctx context.Context, field *models.StatusField, name string) (*models.StatusField, error) {
	if f.optionHook != nil {
		if err := f.optionHook(name); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.field.Options = append(f.field.Options, models.StatusOption{
		ID:   "OPT-" + name,
		Name: name,
	})
	return f.fieldCopy(), nil
}

func (f *fakeGitHub) AddProjectItem(ctx context.Context, issue *models.IssueRef) (*models.ProjectItemRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.items[issue.Number]
	if !ok {
		id = fmt.Sprintf("ITEM%d", issue.Number)
		f.items[issue.Number] = id
	}
	return &models.ProjectItemRef{ItemID: id, IssueNumber: issue.Number}, nil
}

func (f *fakeGitHub) SetItemStatus(ctx context.Context, item *models.ProjectItemRef, field *models.StatusField, optionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[item.ItemID] = optionID
	return nil
}

func (f *fakeGitHub) ListProjectIssues(ctx context.Context) ([]models.ProjectIssue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ProjectIssue(nil), f.projectIssues...), nil
}

func (f *fakeGitHub) DeleteIssue(ctx context.Context, issueNodeID string) error {
	if f.deleteHook != nil {
		if err := f.deleteHook(issueNodeID); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedNodes = append(f.deletedNodes, issueNodeID)
	return nil
}

// fieldCopy must be called with f.mu held.
func (f *fakeGitHub) fieldCopy() *models.StatusField {
	cp := f.field
	cp.Options = append([]models.StatusOption(nil), f.field.Options...)
	return &cp
}
