// Package inmemdb provides map-backed repositories used in tests and local
// development.
package inmemdb

import (
	"sync"

	"github.com/trezcool/vsip/core/content"
	"github.com/trezcool/vsip/core/school"
	"github.com/trezcool/vsip/core/user"
	"github.com/trezcool/vsip/core/veqi"
)

type (
	DB struct {
		user    *userTable
		school  *schoolTable
		veqi    *veqiTable
		content *contentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	schoolTable struct {
		sync.RWMutex
		schools     map[string]*school.School
		classes     map[string]*school.Class
		students    map[string]*school.Student
		sessions    map[string]*school.Session
		assessments map[string]*school.Assessment
		usageLogs   map[string]*school.UsageLog
		compliance  map[string]*school.ComplianceRecord
	}

	veqiTable struct {
		sync.RWMutex
		table map[string]*veqi.Record // keyed by SchoolID + "/" + Quarter
	}

	contentTable struct {
		sync.RWMutex
		table map[string]*content.Item
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		school: &schoolTable{
			schools:     make(map[string]*school.School),
			classes:     make(map[string]*school.Class),
			students:    make(map[string]*school.Student),
			sessions:    make(map[string]*school.Session),
			assessments: make(map[string]*school.Assessment),
			usageLogs:   make(map[string]*school.UsageLog),
			compliance:  make(map[string]*school.ComplianceRecord),
		},
		veqi:    &veqiTable{table: make(map[string]*veqi.Record)},
		content: &contentTable{table: make(map[string]*content.Item)},
	}
	return db, nil
}
