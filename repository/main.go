package repository

import (
	"github.com/tnqbao/gau-drs-provider/infra"
)

type Repository struct {
	ObjectRepo *ObjectRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = &Repository{
		ObjectRepo: NewObjectRepository(infra.Postgres.DB),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}
