package content

import (
	"context"
	"errors"
	"log/slog"
)

// Service serves the curriculum with its access verdicts. Every learner has
// full access to everything.
type Service interface {
	// Dashboard returns every active class with subjects, chapters and topics.
	Dashboard(ctx context.Context) ([]Class, error)

	// Class returns one class with its full tree.
	Class(ctx context.Context, id int) (*Class, error)

	// ClassAccess returns the per-subject access verdicts of a class.
	ClassAccess(ctx context.Context, id int) (*ClassAccess, error)

	// AccessibleClasses lists the active classes by name, without their trees.
	AccessibleClasses(ctx context.Context) ([]Class, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// Config holds the dependencies for the content service.
type Config struct {
	Repo   Repository
	Logger *slog.Logger
}

// NewService creates a new content service with the given dependencies.
func NewService(cfg *Config) Service {
	return &service{repo: cfg.Repo, logger: cfg.Logger}
}

func (s *service) Dashboard(ctx context.Context) ([]Class, error) {
	classes, err := s.repo.ListActiveClasses(ctx, "id")
	if err != nil {
		s.logger.Error("failed to list classes", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if err := s.attachTree(ctx, classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (s *service) Class(ctx context.Context, id int) (*Class, error) {
	c, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}
	tree := []Class{*c}
	if err := s.attachTree(ctx, tree); err != nil {
		return nil, err
	}
	return &tree[0], nil
}

func (s *service) ClassAccess(ctx context.Context, id int) (*ClassAccess, error) {
	c, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.ListSubjects(ctx, []int{id})
	if err != nil {
		s.logger.Error("failed to list subjects", "class_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	out := &ClassAccess{
		ClassID:       c.ID,
		ClassName:     c.Name,
		ClassPrice:    c.Price,
		HasFullAccess: true,
		AccessType:    AccessFull,
		SubjectAccess: make([]SubjectAccess, 0, len(subjects)),
	}
	for _, sub := range subjects {
		out.SubjectAccess = append(out.SubjectAccess, SubjectAccess{
			ID:         sub.ID,
			Name:       sub.Name,
			HasAccess:  true,
			AccessType: AccessFull,
			Price:      sub.Price,
			Currency:   sub.Currency,
		})
	}
	return out, nil
}

func (s *service) AccessibleClasses(ctx context.Context) ([]Class, error) {
	classes, err := s.repo.ListActiveClasses(ctx, "name")
	if err != nil {
		s.logger.Error("failed to list accessible classes", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return classes, nil
}

func (s *service) getClass(ctx context.Context, id int) (*Class, error) {
	c, err := s.repo.GetClass(ctx, id)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("failed to load class", "class_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return c, nil
}

// attachTree loads the subjects, chapters and topics of classes in three
// queries and nests them in place, keeping each level's order.
func (s *service) attachTree(ctx context.Context, classes []Class) error {
	classIDs := make([]int, len(classes))
	for i, c := range classes {
		classIDs[i] = c.ID
	}
	subjects, err := s.repo.ListSubjects(ctx, classIDs)
	if err != nil {
		s.logger.Error("failed to list subjects", "error", err)
		return ErrInternal.WithCause(err)
	}

	subjectIDs := make([]string, len(subjects))
	for i, sub := range subjects {
		subjectIDs[i] = sub.ID
	}
	chapters, err := s.repo.ListChapters(ctx, subjectIDs)
	if err != nil {
		s.logger.Error("failed to list chapters", "error", err)
		return ErrInternal.WithCause(err)
	}

	chapterIDs := make([]string, len(chapters))
	for i, ch := range chapters {
		chapterIDs[i] = ch.ID
	}
	topics, err := s.repo.ListTopics(ctx, chapterIDs)
	if err != nil {
		s.logger.Error("failed to list topics", "error", err)
		return ErrInternal.WithCause(err)
	}

	topicsByChapter := make(map[string][]Topic)
	for _, t := range topics {
		topicsByChapter[t.ChapterID] = append(topicsByChapter[t.ChapterID], t)
	}
	chaptersBySubject := make(map[string][]Chapter)
	for _, ch := range chapters {
		ch.Topics = topicsByChapter[ch.ID]
		chaptersBySubject[ch.SubjectID] = append(chaptersBySubject[ch.SubjectID], ch)
	}
	subjectsByClass := make(map[int][]Subject)
	for _, sub := range subjects {
		sub.Chapters = chaptersBySubject[sub.ID]
		subjectsByClass[sub.ClassID] = append(subjectsByClass[sub.ClassID], sub)
	}
	for i := range classes {
		classes[i].Subjects = subjectsByClass[classes[i].ID]
	}
	return nil
}
