// Hand-written testify mocks used across package tests.
package app

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

type MockDatabase struct {
	mock.Mock
}

func NewMockDatabase(t *testing.T) *MockDatabase {
	m := &MockDatabase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDatabase) Connect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) SetupLockers() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) SetupIndexes() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) InsertOne(collection string, data interface{}) error {
	args := m.Called(collection, data)
	return args.Error(0)
}

func (m *MockDatabase) FindOne(collection string, filter interface{}, result interface{}) error {
	args := m.Called(collection, filter, result)
	return args.Error(0)
}

func (m *MockDatabase) FindMany(collection string, filter interface{}, result interface{}) error {
	args := m.Called(collection, filter, result)
	return args.Error(0)
}

func (m *MockDatabase) FindManyPaginated(collection string, filter interface{}, sort interface{}, page int64, limit int64, result interface{}) error {
	args := m.Called(collection, filter, sort, page, limit, result)
	return args.Error(0)
}

func (m *MockDatabase) CountDocuments(collection string, filter interface{}) (int64, error) {
	args := m.Called(collection, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDatabase) Aggregate(collection string, pipeline interface{}, result interface{}) error {
	args := m.Called(collection, pipeline, result)
	return args.Error(0)
}

func (m *MockDatabase) UpdateOne(collection string, filter interface{}, update interface{}) error {
	args := m.Called(collection, filter, update)
	return args.Error(0)
}

func (m *MockDatabase) UpsertOne(collection string, filter interface{}, update interface{}) error {
	args := m.Called(collection, filter, update)
	return args.Error(0)
}

func (m *MockDatabase) XLock(resourceId string) (string, error) {
	args := m.Called(resourceId)
	return args.String(0), args.Error(1)
}

func (m *MockDatabase) Unlock(lockId string) error {
	args := m.Called(lockId)
	return args.Error(0)
}
