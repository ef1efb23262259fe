// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/adapter"
	"course-ai-platform/internal/domain/ports/repository"
)

type jobKey struct {
	id   int64
	kind model.SubjectKind
}

// memJobRepo is a small in-memory implementation used by unit tests.
type memJobRepo struct {
	mu       sync.RWMutex
	store    map[jobKey]*model.GenerationJob
	beginErr error
	setErr   error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[jobKey]*model.GenerationJob)}
}

func (m *memJobRepo) BeginProcessing(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := jobKey{subjectID, kind}
	if j, ok := m.store[k]; ok {
		if !j.Status.Terminal() {
			j.Status = model.JobStatusProcessing
			j.UpdatedAt = time.Now()
		}
		cp := *j
		return &cp, nil
	}
	j := &model.GenerationJob{
		SubjectID:   subjectID,
		SubjectKind: kind,
		Status:      model.JobStatusProcessing,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.store[k] = j
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) SetTerminal(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind, status model.JobStatus, lastError string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if !status.Terminal() {
		return domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := jobKey{subjectID, kind}
	j, ok := m.store[k]
	if !ok {
		j = &model.GenerationJob{SubjectID: subjectID, SubjectKind: kind, CreatedAt: time.Now()}
		m.store[k] = j
	}
	j.Status = status
	j.LastError = lastError
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) Find(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[jobKey{subjectID, kind}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

// memArtifactRepo dedupes on content the way the SQL unique index does.
type memArtifactRepo struct {
	mu      sync.RWMutex
	store   map[jobKey][]*model.GeneratedArtifact
	seen    map[string]bool
	saveErr error
	nextID  int
}

func newMemArtifactRepo() *memArtifactRepo {
	return &memArtifactRepo{store: make(map[jobKey][]*model.GeneratedArtifact), seen: make(map[string]bool)}
}

func (m *memArtifactRepo) SaveAll(ctx context.Context, tx repository.Tx, artifacts []*model.GeneratedArtifact) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, a := range artifacts {
		key := fmt.Sprintf("%d|%s|%s|%s|%s|%s", a.SubjectID, a.SubjectKind, a.ContentType, a.ContentData, a.MaterialReferences, a.QuestionID)
		if m.seen[key] {
			continue
		}
		m.seen[key] = true
		m.nextID++
		cp := *a
		if cp.ID == "" {
			cp.ID = fmt.Sprintf("art-%04d", m.nextID)
		}
		k := jobKey{a.SubjectID, a.SubjectKind}
		m.store[k] = append(m.store[k], &cp)
		inserted++
	}
	return inserted, nil
}

func (m *memArtifactRepo) ListBySubject(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind) ([]*model.GeneratedArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.store[jobKey{subjectID, kind}]
	out := make([]*model.GeneratedArtifact, 0, len(src))
	for _, a := range src {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// memCatalogRepo holds the catalog rows a test seeds directly.
type memCatalogRepo struct {
	mu          sync.RWMutex
	courses     map[int64]*model.Course
	lectures    map[int64]*model.Lecture
	assessments map[int64]*model.Assessment
	enrollments map[[2]int64]bool // [studentID, courseID]
	materials   map[int64][]*model.Material
	nextAssess  int64
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{
		courses:     make(map[int64]*model.Course),
		lectures:    make(map[int64]*model.Lecture),
		assessments: make(map[int64]*model.Assessment),
		enrollments: make(map[[2]int64]bool),
		materials:   make(map[int64][]*model.Material),
		nextAssess:  1000,
	}
}

func (m *memCatalogRepo) addCourse(id, teacherID int64, title string) {
	m.courses[id] = &model.Course{ID: id, TeacherID: teacherID, Title: title}
}

func (m *memCatalogRepo) addLecture(id, courseID int64, title string) {
	m.lectures[id] = &model.Lecture{ID: id, CourseID: courseID, Title: title}
}

func (m *memCatalogRepo) addAssessment(id, courseID int64, title string) {
	m.assessments[id] = &model.Assessment{ID: id, CourseID: courseID, Title: title, Type: "QUIZ"}
}

func (m *memCatalogRepo) enroll(studentID, courseID int64) {
	m.enrollments[[2]int64{studentID, courseID}] = true
}

func (m *memCatalogRepo) addMaterial(lectureID int64, materialType, filePath string, createdAt time.Time) {
	m.materials[lectureID] = append(m.materials[lectureID], &model.Material{
		ID: int64(len(m.materials[lectureID]) + 1), LectureID: lectureID,
		MaterialType: materialType, FilePath: filePath, CreatedAt: createdAt,
	})
}

func (m *memCatalogRepo) FindCourse(ctx context.Context, tx repository.Tx, courseID int64) (*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[courseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCatalogRepo) FindLecture(ctx context.Context, tx repository.Tx, lectureID int64) (*model.Lecture, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lectures[lectureID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memCatalogRepo) FindAssessment(ctx context.Context, tx repository.Tx, assessmentID int64) (*model.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assessments[assessmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memCatalogRepo) CreateQuizAssessment(ctx context.Context, tx repository.Tx, courseID int64, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAssess++
	id := m.nextAssess
	m.assessments[id] = &model.Assessment{ID: id, CourseID: courseID, Title: title, Type: "QUIZ"}
	return id, nil
}

func (m *memCatalogRepo) IsEnrolled(ctx context.Context, tx repository.Tx, userID, courseID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enrollments[[2]int64{userID, courseID}], nil
}

func (m *memCatalogRepo) LatestMaterial(ctx context.Context, tx repository.Tx, lectureID int64, materialType string) (*model.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Material
	for _, mt := range m.materials[lectureID] {
		if mt.MaterialType != materialType {
			continue
		}
		if latest == nil || mt.CreatedAt.After(latest.CreatedAt) {
			latest = mt
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// fakeTxManager just runs the function; unit tests do not exercise SQL.
type fakeTxManager struct {
	err error
}

func (f *fakeTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx, repository.NoTX)
}

// fakeLocker grants every lock unless told otherwise.
type fakeLocker struct {
	mu      sync.Mutex
	denied  bool
	locks   []string
	unlocks []string
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied {
		return "", domain.ErrLockNotAcquired
	}
	f.locks = append(f.locks, key)
	return "tok-" + key, nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks = append(f.unlocks, key)
	return nil
}

// fakeDelegator records dispatches and returns canned streaming results.
type fakeDelegator struct {
	mu         sync.Mutex
	dispatched []adapter.DispatchRequest
	dispatchCh chan adapter.DispatchRequest

	dispatchErr error
	initRes     *adapter.InitializeResult
	initErr     error
	contentRes  *adapter.ContentResult
	contentErr  error
	sessionRes  *adapter.SessionResult
	sessionErr  error
	answerRes   *adapter.AnswerResult
	answerErr   error
	cancelErr   error
}

func newFakeDelegator() *fakeDelegator {
	return &fakeDelegator{dispatchCh: make(chan adapter.DispatchRequest, 8)}
}

func (f *fakeDelegator) Dispatch(ctx context.Context, req adapter.DispatchRequest) error {
	f.mu.Lock()
	f.dispatched = append(f.dispatched, req)
	f.mu.Unlock()
	f.dispatchCh <- req
	return f.dispatchErr
}

func (f *fakeDelegator) InitializeStream(ctx context.Context, lectureID int64, pdfPath string) (*adapter.InitializeResult, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	if f.initRes != nil {
		return f.initRes, nil
	}
	return &adapter.InitializeResult{Status: "INITIALIZED", LectureID: lectureID}, nil
}

func (f *fakeDelegator) NextContent(ctx context.Context, lectureID int64) (*adapter.ContentResult, error) {
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	if f.contentRes != nil {
		return f.contentRes, nil
	}
	return &adapter.ContentResult{Status: "OK", LectureID: lectureID, HasMore: true}, nil
}

func (f *fakeDelegator) Session(ctx context.Context, lectureID int64) (*adapter.SessionResult, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.sessionRes != nil {
		return f.sessionRes, nil
	}
	return &adapter.SessionResult{Status: "OK", LectureID: lectureID}, nil
}

func (f *fakeDelegator) AnswerQuestion(ctx context.Context, lectureID int64, questionID, answer string) (*adapter.AnswerResult, error) {
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	if f.answerRes != nil {
		return f.answerRes, nil
	}
	return &adapter.AnswerResult{Status: "PROCESSING", LectureID: lectureID, QuestionID: questionID}, nil
}

func (f *fakeDelegator) CancelStream(ctx context.Context, lectureID int64) error {
	return f.cancelErr
}

func (f *fakeDelegator) dispatchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dispatched)
}
