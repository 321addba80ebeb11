// Where: cli/internal/dbops/fake_server_test.go
// What: In-memory database server implementing Engine and Archiver.
// Why: Exercise guards, sequencing, and round trips without a Postgres instance.
package dbops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
)

type fakeDatabase struct {
	Owner  string
	Tables map[string]int64
}

type fakeServer struct {
	mu        sync.Mutex
	databases map[string]*fakeDatabase
	sessions  map[string]int
	calls     []string
	failOn    map[string]error
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		databases: map[string]*fakeDatabase{},
		sessions:  map[string]int{},
		failOn:    map[string]error{},
	}
}

func (s *fakeServer) seed(name string, tables map[string]int64) {
	copied := map[string]int64{}
	for k, v := range tables {
		copied[k] = v
	}
	s.databases[name] = &fakeDatabase{Owner: "postgres", Tables: copied}
}

func (s *fakeServer) record(call string) error {
	s.calls = append(s.calls, call)
	if err, ok := s.failOn[call]; ok {
		return err
	}
	return nil
}

func (s *fakeServer) called(call string) bool {
	for _, c := range s.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (s *fakeServer) names() []string {
	var out []string
	for name := range s.databases {
		out = append(out, name)
	}
	return out
}

func (s *fakeServer) CreateDatabase(_ context.Context, _ Conn, name, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("create:" + name); err != nil {
		return err
	}
	if _, ok := s.databases[name]; ok {
		return fmt.Errorf("%w: %s", lifecycle.ErrDatabaseExists, name)
	}
	s.databases[name] = &fakeDatabase{Owner: owner, Tables: map[string]int64{}}
	return nil
}

func (s *fakeServer) DropDatabase(_ context.Context, _ Conn, name string, ifExists bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("drop:" + name); err != nil {
		return err
	}
	if _, ok := s.databases[name]; !ok {
		if ifExists {
			return nil
		}
		return fmt.Errorf("database %s does not exist", name)
	}
	if s.sessions[name] > 0 {
		return fmt.Errorf("%w: %s", lifecycle.ErrDatabaseInUse, name)
	}
	delete(s.databases, name)
	return nil
}

func (s *fakeServer) DatabaseExists(_ context.Context, _ Conn, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("exists:" + name); err != nil {
		return false, err
	}
	_, ok := s.databases[name]
	return ok, nil
}

func (s *fakeServer) CountSessions(_ context.Context, _ Conn, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("sessions:" + name); err != nil {
		return 0, err
	}
	return s.sessions[name], nil
}

func (s *fakeServer) TerminateSessions(_ context.Context, _ Conn, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("terminate:" + name); err != nil {
		return 0, err
	}
	n := s.sessions[name]
	s.sessions[name] = 0
	return n, nil
}

func (s *fakeServer) GrantAll(_ context.Context, conn Conn, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record("grant:" + conn.Database)
}

func (s *fakeServer) ReassignOwnership(_ context.Context, conn Conn, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("reassign:" + conn.Database); err != nil {
		return err
	}
	if db, ok := s.databases[conn.Database]; ok {
		db.Owner = owner
	}
	return nil
}

func (s *fakeServer) Inspect(_ context.Context, conn Conn) (Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.databases[conn.Database]
	if !ok {
		return Inventory{}, fmt.Errorf("database %s does not exist", conn.Database)
	}
	tables := map[string]int64{}
	for k, v := range db.Tables {
		tables[k] = v
	}
	return Inventory{Tables: tables}, nil
}

func (s *fakeServer) Dump(_ context.Context, source Conn, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("dump:" + source.Database); err != nil {
		return err
	}
	db, ok := s.databases[source.Database]
	if !ok {
		return fmt.Errorf("database %s does not exist", source.Database)
	}
	content, err := json.Marshal(db.Tables)
	if err != nil {
		return err
	}
	if err, ok := s.failOn["truncate:"+source.Database]; ok {
		_ = os.WriteFile(path, content[:len(content)/2], 0o600)
		return err
	}
	return os.WriteFile(path, content, 0o600)
}

func (s *fakeServer) Restore(_ context.Context, target Conn, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("load:" + target.Database); err != nil {
		return err
	}
	db, ok := s.databases[target.Database]
	if !ok {
		return errors.New("restore target missing")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, &db.Tables)
}

var (
	_ Engine   = (*fakeServer)(nil)
	_ Archiver = (*fakeServer)(nil)
)
