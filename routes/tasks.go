package routes

import (
	"errors"
	"net/http"
	"strconv"
)

// Task é o recurso de exemplo. As rotas /tasks respondem dados fixos;
// troque pelos acessos ao seu armazenamento.
type Task struct {
	Completed   bool   `json:"completed"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
}

var sampleTasks = []Task{
	{
		Completed: false,
		DueDate:   "2025-01-05",
		Name:      "Clean my room",
		Slug:      "clean-room",
	},
	{
		Completed:   true,
		Description: "Lorem Ipsum",
		DueDate:     "2022-12-24",
		Name:        "Build something awesome with Cloudflare Workers",
		Slug:        "cloudflare-workers",
	},
}

type taskQuery struct {
	Page        int
	IsCompleted *bool
}

func parseTaskQuery(r *http.Request) (taskQuery, error) {
	q := taskQuery{Page: 1}
	values := r.URL.Query()

	if v := values.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return taskQuery{}, errors.New("page must be a number")
		}
		q.Page = page
	}
	if v := values.Get("isCompleted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return taskQuery{}, errors.New("isCompleted must be a boolean")
		}
		q.IsCompleted = &b
	}
	return q, nil
}

func (h *handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	if _, err := parseTaskQuery(r); err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sampleTasks)
}

func (h *handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var body Task
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.stubTask("my-task"))
}

func (h *handlers) getTask(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stubTask(r.PathValue("taskSlug")))
}

func (h *handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) stubTask(slug string) Task {
	return Task{
		Completed:   false,
		Description: "this needs to be done",
		DueDate:     h.now().UTC().Format("2006-01-02"),
		Name:        "my task",
		Slug:        slug,
	}
}
