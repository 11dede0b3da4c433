package state

import "sync"

// Store 持有当前状态快照。所有迁移经过 Dispatch 串行执行，读取方拿到的快照不会再变化
type Store struct {
	mu      sync.RWMutex
	current *State
}

// NewStore 创建空状态
func NewStore() *Store {
	return &Store{current: &State{}}
}

// Current 当前状态快照
func (s *Store) Current() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Dispatch 执行一次状态迁移并返回新快照
func (s *Store) Dispatch(a Action) *State {
	st, _ := s.DispatchIf(nil, a)
	return st
}

// DispatchIf 在持有写锁的情况下检查 cond，满足时才执行迁移
// cond 为 nil 视为满足；不满足时返回当前快照和 false
func (s *Store) DispatchIf(cond func(*State) bool, a Action) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cond != nil && !cond(s.current) {
		return s.current, false
	}
	next := Reduce(*s.current, a)
	s.current = &next
	return s.current, true
}
