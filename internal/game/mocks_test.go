package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"versebattle/internal/model"
	"versebattle/internal/store"
)

// memStore is an in-memory RoomStore with the same serialize-on-write
// behavior as the redis implementation.
type memStore struct {
	mu    sync.Mutex
	rooms map[string][]byte
	subs  map[string][]chan store.Event
	fail  error // when set, every operation fails with this error
}

func newMemStore() *memStore {
	return &memStore{
		rooms: make(map[string][]byte),
		subs:  make(map[string][]chan store.Event),
	}
}

func (m *memStore) Create(_ context.Context, room *model.RoomState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.rooms[room.Code]; ok {
		return store.ErrRoomExists
	}
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	m.rooms[room.Code] = data
	m.notify(room.Code, store.Event{Room: room})
	return nil
}

func (m *memStore) Get(_ context.Context, code string) (*model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	data, ok := m.rooms[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	var room model.RoomState
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (m *memStore) Update(_ context.Context, code string, mutate func(*model.RoomState) error) (*model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	data, ok := m.rooms[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	var room model.RoomState
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	if err := mutate(&room); err != nil {
		if errors.Is(err, store.ErrNoChange) {
			return &room, nil
		}
		return nil, err
	}
	updated, err := json.Marshal(&room)
	if err != nil {
		return nil, err
	}
	m.rooms[code] = updated
	m.notify(code, store.Event{Room: &room})
	return &room, nil
}

func (m *memStore) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.rooms, code)
	m.notify(code, store.Event{Deleted: true})
	return nil
}

func (m *memStore) Exists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[code]
	return ok, nil
}

func (m *memStore) Subscribe(_ context.Context, code string) (<-chan store.Event, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan store.Event, 32)
	m.subs[code] = append(m.subs[code], ch)
	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, c := range m.subs[code] {
			if c == ch {
				m.subs[code] = append(m.subs[code][:i], m.subs[code][i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel, nil
}

func (m *memStore) notify(code string, ev store.Event) {
	for _, ch := range m.subs[code] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// fakeVerseRepo serves a small fixed catalog.
type fakeVerseRepo struct {
	verses []*model.Verse
}

func newFakeVerseRepo() *fakeVerseRepo {
	mk := func(id, ref string, d model.Difficulty, esv, niv string) *model.Verse {
		return &model.Verse{
			ID:         id,
			Reference:  ref,
			Difficulty: d,
			Translations: map[string]string{
				"ESV": esv,
				"NIV": niv,
			},
		}
	}
	return &fakeVerseRepo{verses: []*model.Verse{
		mk("john-11-35", "John 11:35", model.DifficultyEasy,
			"Jesus wept.",
			"Jesus wept."),
		mk("genesis-1-1", "Genesis 1:1", model.DifficultyEasy,
			"In the beginning, God created the heavens and the earth.",
			"In the beginning God created the heavens and the earth."),
		mk("psalm-23-1", "Psalm 23:1", model.DifficultyMedium,
			"The Lord is my shepherd; I shall not want.",
			"The Lord is my shepherd, I lack nothing."),
		mk("romans-8-28", "Romans 8:28", model.DifficultyHard,
			"And we know that for those who love God all things work together for good, for those who are called according to his purpose.",
			"And we know that in all things God works for the good of those who love him, who have been called according to his purpose."),
	}}
}

func (f *fakeVerseRepo) GetByID(_ context.Context, id string) (*model.Verse, error) {
	for _, v := range f.verses {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (f *fakeVerseRepo) ByDifficulty(_ context.Context, d model.Difficulty) ([]*model.Verse, error) {
	var out []*model.Verse
	for _, v := range f.verses {
		if v.Difficulty == d {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVerseRepo) RandomSample(_ context.Context, n int) ([]*model.Verse, error) {
	out := make([]*model.Verse, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.verses[i%len(f.verses)])
	}
	return out, nil
}

func (f *fakeVerseRepo) RandomByDifficulty(ctx context.Context, d model.Difficulty, n int) ([]*model.Verse, error) {
	all, _ := f.ByDifficulty(ctx, d)
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (f *fakeVerseRepo) InsertMany(_ context.Context, verses []*model.Verse) error {
	f.verses = append(f.verses, verses...)
	return nil
}

func (f *fakeVerseRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.verses)), nil
}
