package space

import (
	"crypto/rand"
	"encoding/hex"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

// Annotations do not touch tags or attributes, so these mutations
// never trigger a re-index.

// ListAnnotations returns a document's annotations, empty if none.
func (m *Manager) ListAnnotations(spaceKey, docPath string) ([]models.Annotation, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return nil, err
	}
	return store.ReadAnnotations(docPath)
}

// AddAnnotation appends an annotation, assigning an id if absent, and
// returns the stored annotation.
func (m *Manager) AddAnnotation(spaceKey, docPath string, annotation models.Annotation) (models.Annotation, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return models.Annotation{}, err
	}
	annotations, err := store.ReadAnnotations(docPath)
	if err != nil {
		return models.Annotation{}, err
	}

	if annotation.ID == "" {
		id, err := newAnnotationID()
		if err != nil {
			return models.Annotation{}, err
		}
		annotation.ID = id
	}
	for _, existing := range annotations {
		if existing.ID == annotation.ID {
			return models.Annotation{}, inkerr.AlreadyExists("annotation %s already exists", annotation.ID)
		}
	}

	annotations = append(annotations, annotation)
	if err := store.WriteAnnotations(docPath, annotations); err != nil {
		return models.Annotation{}, err
	}
	return annotation, nil
}

// UpdateAnnotation replaces an annotation by id.
func (m *Manager) UpdateAnnotation(spaceKey, docPath string, annotation models.Annotation) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	annotations, err := store.ReadAnnotations(docPath)
	if err != nil {
		return err
	}

	for i, existing := range annotations {
		if existing.ID == annotation.ID {
			annotations[i] = annotation
			return store.WriteAnnotations(docPath, annotations)
		}
	}
	return inkerr.NotFound("annotation not found: %s", annotation.ID)
}

// DeleteAnnotation removes an annotation by id.
func (m *Manager) DeleteAnnotation(spaceKey, docPath, annotationID string) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	annotations, err := store.ReadAnnotations(docPath)
	if err != nil {
		return err
	}

	for i, existing := range annotations {
		if existing.ID == annotationID {
			annotations = append(annotations[:i], annotations[i+1:]...)
			return store.WriteAnnotations(docPath, annotations)
		}
	}
	return inkerr.NotFound("annotation not found: %s", annotationID)
}

func newAnnotationID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", inkerr.IO(err, "generate annotation id")
	}
	return hex.EncodeToString(b), nil
}
