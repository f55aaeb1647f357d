// Package library stores the signed-in user's scripts and saved hook variations.
package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/auth"
	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/store"
)

const (
	Scripts     = "scripts"
	HookResults = "hookResults"

	DefaultHookLimit = 10
)

// Library scopes store operations to the user carried by the request context.
type Library struct {
	store store.Store
}

func New(s store.Store) *Library {
	return &Library{store: s}
}

func owner(ctx context.Context, action string) (string, error) {
	u, ok := auth.UserFrom(ctx)
	if !ok {
		return "", apperr.AuthRequired("User must be signed in to " + action)
	}
	return u.ID, nil
}

// owned fetches a document and hides other owners' documents behind NotFound.
func (l *Library) owned(ctx context.Context, collection, id, ownerID string) (store.Document, error) {
	doc, err := l.store.Get(ctx, collection, id)
	if err != nil {
		return store.Document{}, err
	}
	if doc.OwnerID != ownerID {
		return store.Document{}, apperr.NotFound(fmt.Sprintf("No document %s in %s", id, collection))
	}
	return doc, nil
}

func (l *Library) SaveScript(ctx context.Context, s schema.SavedScript) (schema.SavedScript, error) {
	ownerID, err := owner(ctx, "save scripts")
	if err != nil {
		return schema.SavedScript{}, err
	}
	s.ScriptBrief = s.ScriptBrief.Normalize()
	if err := schema.Validate(s); err != nil {
		return schema.SavedScript{}, err
	}
	s.ID, s.OwnerID = "", ownerID
	id, err := l.store.Create(ctx, Scripts, ownerID, s)
	if err != nil {
		return schema.SavedScript{}, err
	}
	doc, err := l.store.Get(ctx, Scripts, id)
	if err != nil {
		return schema.SavedScript{}, err
	}
	log.Info("Saved script", "id", id, "title", s.Title)
	return scriptFrom(doc)
}

func (l *Library) ListScripts(ctx context.Context) ([]schema.SavedScript, error) {
	ownerID, err := owner(ctx, "view scripts")
	if err != nil {
		return nil, err
	}
	docs, err := l.store.Query(ctx, Scripts, store.Query{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]schema.SavedScript, 0, len(docs))
	for _, d := range docs {
		s, err := scriptFrom(d)
		if err != nil {
			log.Warn("skipping unreadable script", "id", d.ID, "err", err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (l *Library) DeleteScript(ctx context.Context, id string) error {
	ownerID, err := owner(ctx, "delete scripts")
	if err != nil {
		return err
	}
	if _, err := l.owned(ctx, Scripts, id, ownerID); err != nil {
		return err
	}
	return l.store.Delete(ctx, Scripts, id)
}

// ReplaceScript saves s as a new document and then deletes the old one. A
// failure between the two steps leaves both copies rather than neither.
func (l *Library) ReplaceScript(ctx context.Context, id string, s schema.SavedScript) (schema.SavedScript, error) {
	ownerID, err := owner(ctx, "edit scripts")
	if err != nil {
		return schema.SavedScript{}, err
	}
	if _, err := l.owned(ctx, Scripts, id, ownerID); err != nil {
		return schema.SavedScript{}, err
	}
	saved, err := l.SaveScript(ctx, s)
	if err != nil {
		return schema.SavedScript{}, err
	}
	if err := l.store.Delete(ctx, Scripts, id); err != nil {
		log.Error("edited script saved but old copy not deleted", "old", id, "new", saved.ID, "err", err)
		return saved, err
	}
	log.Info("Replaced script", "old", id, "new", saved.ID)
	return saved, nil
}

func (l *Library) SaveHookVariation(ctx context.Context, v schema.SavedHookVariation) (schema.SavedHookVariation, error) {
	ownerID, err := owner(ctx, "save hooks")
	if err != nil {
		return schema.SavedHookVariation{}, err
	}
	if err := schema.Validate(v); err != nil {
		return schema.SavedHookVariation{}, err
	}
	v.ID, v.OwnerID = "", ownerID
	id, err := l.store.Create(ctx, HookResults, ownerID, v)
	if err != nil {
		return schema.SavedHookVariation{}, err
	}
	doc, err := l.store.Get(ctx, HookResults, id)
	if err != nil {
		return schema.SavedHookVariation{}, err
	}
	return variationFrom(doc)
}

// RecentHookVariations lists the newest saved variations; limit <= 0 means DefaultHookLimit.
func (l *Library) RecentHookVariations(ctx context.Context, limit int) ([]schema.SavedHookVariation, error) {
	ownerID, err := owner(ctx, "view saved hooks")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHookLimit
	}
	docs, err := l.store.Query(ctx, HookResults, store.Query{OwnerID: ownerID, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]schema.SavedHookVariation, 0, len(docs))
	for _, d := range docs {
		v, err := variationFrom(d)
		if err != nil {
			log.Warn("skipping unreadable hook variation", "id", d.ID, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (l *Library) DeleteHookVariation(ctx context.Context, id string) error {
	ownerID, err := owner(ctx, "delete saved hooks")
	if err != nil {
		return err
	}
	if _, err := l.owned(ctx, HookResults, id, ownerID); err != nil {
		return err
	}
	return l.store.Delete(ctx, HookResults, id)
}

func scriptFrom(d store.Document) (schema.SavedScript, error) {
	s, err := store.Decode[schema.SavedScript](d)
	if err != nil {
		return schema.SavedScript{}, err
	}
	s.ID, s.OwnerID, s.CreatedAt = d.ID, d.OwnerID, d.CreatedAt
	return s, nil
}

func variationFrom(d store.Document) (schema.SavedHookVariation, error) {
	v, err := store.Decode[schema.SavedHookVariation](d)
	if err != nil {
		return schema.SavedHookVariation{}, err
	}
	v.ID, v.OwnerID, v.Timestamp = d.ID, d.OwnerID, d.CreatedAt
	return v, nil
}
