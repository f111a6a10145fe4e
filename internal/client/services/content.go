package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/credstore"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
)

// ContentService reads and changes community content. Every call carries
// the stored bearer token when there is one; mutating calls without a
// credential fail with client.ErrUnauthorized before reaching the network.
type ContentService interface {
	List(ctx context.Context, kind models.Kind) ([]models.Item, error)
	Get(ctx context.Context, kind models.Kind, id int64) (models.Item, error)
	Add(ctx context.Context, draft models.Draft) (models.Item, error)
	Edit(ctx context.Context, id int64, draft models.Draft) (models.Item, error)
	Delete(ctx context.Context, kind models.Kind, id int64) error
}

type contentService struct {
	client client.Client
	store  credstore.Store
}

func NewContentService(c client.Client, store credstore.Store) ContentService {
	return &contentService{client: c, store: store}
}

func (s *contentService) token(ctx context.Context, required bool) (string, error) {
	return bearerToken(ctx, s.store, required)
}

// bearerToken returns the stored access token. Without a credential it
// returns "" or, when required, client.ErrUnauthorized.
func bearerToken(ctx context.Context, store credstore.Store, required bool) (string, error) {
	cred, ok, err := store.Load(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		if required {
			return "", client.ErrUnauthorized
		}
		return "", nil
	}
	return cred.AccessToken, nil
}

func (s *contentService) List(ctx context.Context, kind models.Kind) ([]models.Item, error) {
	token, err := s.token(ctx, false)
	if err != nil {
		return nil, err
	}
	items, err := s.client.List(ctx, kind, token)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	return items, nil
}

func (s *contentService) Get(ctx context.Context, kind models.Kind, id int64) (models.Item, error) {
	token, err := s.token(ctx, false)
	if err != nil {
		return models.Item{}, err
	}
	it, err := s.client.Get(ctx, kind, id, token)
	if err != nil {
		return models.Item{}, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return it, nil
}

func (s *contentService) Add(ctx context.Context, draft models.Draft) (models.Item, error) {
	if err := validate(draft); err != nil {
		return models.Item{}, err
	}
	token, err := s.token(ctx, true)
	if err != nil {
		return models.Item{}, err
	}
	it, err := s.client.Add(ctx, draft, token)
	if err != nil {
		return models.Item{}, fmt.Errorf("add %s: %w", draft.Kind, err)
	}
	return it, nil
}

func (s *contentService) Edit(ctx context.Context, id int64, draft models.Draft) (models.Item, error) {
	if err := validate(draft); err != nil {
		return models.Item{}, err
	}
	token, err := s.token(ctx, true)
	if err != nil {
		return models.Item{}, err
	}
	it, err := s.client.Edit(ctx, id, draft, token)
	if err != nil {
		return models.Item{}, fmt.Errorf("edit %s %d: %w", draft.Kind, id, err)
	}
	return it, nil
}

func (s *contentService) Delete(ctx context.Context, kind models.Kind, id int64) error {
	token, err := s.token(ctx, true)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, kind, id, token); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return nil
}

func validate(d models.Draft) error {
	return problemsError(d.Validate())
}

func problemsError(problems map[string]string) error {
	if len(problems) == 0 {
		return nil
	}
	ve := &client.ValidationError{Fields: make(map[string][]string, len(problems))}
	for field, msg := range problems {
		ve.Fields[field] = []string{msg}
	}
	return ve
}
