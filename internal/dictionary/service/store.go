package service

import (
	"context"
	"sync"

	"scope3-dict/internal/dictionary/model"
)

// Store: словарь только на добавление. Записи не редактируются и не удаляются.
// Запись сериализуется мьютексом, чтение идёт по снимку.
type Store struct {
	mu      sync.RWMutex
	entries []model.Entry
	byID    map[string]int
}

func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Append добавляет пачку целиком под одной блокировкой.
func (s *Store) Append(entries ...model.Entry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.byID[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
}

// Snapshot: копия текущих записей в порядке добавления.
func (s *Store) Snapshot() []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Get(id string) (model.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.Entry{}, false
	}
	return s.entries[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := model.Stats{TotalEntries: len(s.entries)}
	for _, e := range s.entries {
		switch e.Source {
		case model.SourceLearned:
			st.LearnedEntries++
		case model.SourceManual:
			st.ManualEntries++
		}
	}
	return st
}

// Learn прогоняет обучение и добавляет пачку, только если проход завершился без ошибки.
func (s *Store) Learn(ctx context.Context, l *Learner, rows []model.TrainingRow) ([]model.Entry, error) {
	entries, err := l.Learn(ctx, rows)
	if err != nil {
		return nil, err
	}
	s.Append(entries...)
	return entries, nil
}

// AddManual проверяет ввод и добавляет запись.
func (s *Store) AddManual(keywordText, category, categoryCode string) (model.Entry, error) {
	e, err := BuildManual(keywordText, category, categoryCode)
	if err != nil {
		return model.Entry{}, err
	}
	s.Append(e)
	return e, nil
}
