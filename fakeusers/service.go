package fakeusers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/restcontract/api-contract-tests/servicedef"
)

// Service behaves like the public demo API: it has ten fixed users, every created user gets
// the next ID after them, and changes to the fixed users are acknowledged but not kept.
type Service struct {
	seeded  []servicedef.User
	created map[int]map[string]interface{}
	lock    sync.Mutex

	// ListSize overrides the number of users returned by the list endpoint, if not zero.
	ListSize int
}

func New() *Service {
	s := &Service{created: make(map[int]map[string]interface{})}
	for i := 1; i <= servicedef.SeededUserCount; i++ {
		s.seeded = append(s.seeded, servicedef.User{
			ID:       ldvalue.NewOptionalInt(i),
			Name:     fmt.Sprintf("User %d", i),
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.org", i),
			Address: &servicedef.Address{Street: "Main St", Suite: "Apt. 1", City: "Springfield", Zipcode: "00000",
				Geo: servicedef.Geo{Lat: "0", Lng: "0"}},
			Phone:   "555-0100",
			Website: fmt.Sprintf("user%d.example.org", i),
			Company: &servicedef.Company{Name: "Acme", CatchPhrase: "Anything", BS: "everything"},
		})
	}
	return s
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/users", s.listUsers)
	r.Post("/users", s.createUser)
	r.Route("/users/{id}", func(r chi.Router) {
		r.Get("/", s.getUser)
		r.Put("/", s.updateUser)
		r.Patch("/", s.updateUser)
		r.Delete("/", s.deleteUser)
	})
	return r
}

func (s *Service) listUsers(w http.ResponseWriter, r *http.Request) {
	users := s.seeded
	if s.ListSize > 0 && s.ListSize < len(users) {
		users = users[:s.ListSize]
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Service) createUser(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSONObject(w, r)
	if !ok {
		return
	}
	body[servicedef.FieldID] = servicedef.CreatedUserID
	s.lock.Lock()
	s.created[servicedef.CreatedUserID] = body
	s.lock.Unlock()
	writeJSON(w, http.StatusCreated, body)
}

func (s *Service) getUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.find(w, r)
	if ok {
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Service) updateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.find(w, r)
	if !ok {
		return
	}
	body, ok := readJSONObject(w, r)
	if !ok {
		return
	}
	merged := map[string]interface{}{}
	if r.Method == http.MethodPatch {
		for k, v := range user {
			merged[k] = v
		}
	}
	for k, v := range body {
		merged[k] = v
	}
	merged[servicedef.FieldID] = user[servicedef.FieldID]
	if id := int(user[servicedef.FieldID].(float64)); id > servicedef.SeededUserCount {
		s.lock.Lock()
		s.created[id] = merged
		s.lock.Unlock()
	}
	writeJSON(w, http.StatusOK, merged)
}

func (s *Service) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.find(w, r)
	if !ok {
		return
	}
	if id := int(user[servicedef.FieldID].(float64)); id > servicedef.SeededUserCount {
		s.lock.Lock()
		delete(s.created, id)
		s.lock.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

// find returns a copy of the user as generic JSON, or writes a 404 response.
func (s *Service) find(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	var found interface{}
	if err == nil {
		if id >= 1 && id <= len(s.seeded) {
			found = s.seeded[id-1]
		} else {
			s.lock.Lock()
			if u, ok := s.created[id]; ok {
				found = u
			}
			s.lock.Unlock()
		}
	}
	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{})
		return nil, false
	}
	data, _ := json.Marshal(found)
	var ret map[string]interface{}
	_ = json.Unmarshal(data, &ret)
	return ret, true
}

func readJSONObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
