package repository

import "errors"

// ErrNotFound ligne absente
var ErrNotFound = errors.New("repository: introuvable")

// ErrConflict écriture conditionnelle (LWT) refusée
var ErrConflict = errors.New("repository: conflit")
