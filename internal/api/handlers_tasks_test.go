// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/models"
)

func TestTaskCRUD(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com", false)

	id := env.createTask(t, user.Token, "Write report", "work", time.Now().AddDate(0, 0, 3))

	var task models.Task
	rr := env.do(t, http.MethodGet, "/api/tasks/"+id, user.Token, nil, &task)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	if task.Name != "Write report" || task.UserID != user.ID {
		t.Errorf("task = %+v", task)
	}
	if task.Status != models.StatusPending {
		t.Errorf("default status = %q, want pending", task.Status)
	}

	rr = env.do(t, http.MethodPut, "/api/tasks/"+id, user.Token, map[string]string{
		"status": "completed",
	}, &task)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	if task.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", task.Status)
	}
	if task.Name != "Write report" {
		t.Errorf("empty field overwrote name: %q", task.Name)
	}
	if task.UserID != user.ID {
		t.Errorf("owner changed on update: %q", task.UserID)
	}

	rr = env.do(t, http.MethodDelete, "/api/tasks/"+id, user.Token, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = env.do(t, http.MethodGet, "/api/tasks/"+id, user.Token, nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rr.Code)
	}

	// One entry per mutation: create, update, delete.
	entries, _ := env.auditStore.ListByResource(audit.ResourceTask, id, 0)
	if len(entries) != 3 {
		t.Fatalf("audit entries = %d, want 3", len(entries))
	}
	wantActions := []audit.Action{audit.ActionDelete, audit.ActionUpdate, audit.ActionCreate}
	for i, want := range wantActions {
		if entries[i].Action != want {
			t.Errorf("entry[%d].Action = %q, want %q (newest first)", i, entries[i].Action, want)
		}
	}
}

func TestTaskListScopedToOwner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com", false)
	bob := env.register(t, "Bob", "bob@example.com", false)

	env.createTask(t, alice.Token, "Alice task", "home", time.Now().AddDate(0, 0, 1))
	env.createTask(t, bob.Token, "Bob task", "home", time.Now().AddDate(0, 0, 1))

	var tasks []models.Task
	rr := env.do(t, http.MethodGet, "/api/tasks", alice.Token, nil, &tasks)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(tasks) != 1 || tasks[0].Name != "Alice task" {
		t.Errorf("alice sees %+v", tasks)
	}
}

// The core multi-tenancy scenario: a non-owner is rejected with 401, an
// admin succeeds and leaves an update entry behind.
func TestTaskOwnershipEnforcement(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	owner := env.register(t, "Owner", "owner@example.com", false)
	intruder := env.register(t, "Intruder", "intruder@example.com", false)
	admin := env.register(t, "Root", "root@example.com", true)

	id := env.createTask(t, owner.Token, "Private task", "secret", time.Now().AddDate(0, 0, 1))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body interface{}
		if method == http.MethodPut {
			body = map[string]string{"name": "hijacked"}
		}
		rr := env.do(t, method, "/api/tasks/"+id, intruder.Token, body, nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s as non-owner = %d, want 401", method, rr.Code)
		}
		if msg := errorMessage(t, rr); msg != "Not authorized" {
			t.Errorf("%s message = %q", method, msg)
		}
	}

	// The task is untouched.
	var task models.Task
	env.do(t, http.MethodGet, "/api/tasks/"+id, owner.Token, nil, &task)
	if task.Name != "Private task" {
		t.Errorf("task mutated by rejected caller: %q", task.Name)
	}

	// Admin may update any task.
	before, _ := env.auditStore.ListByResource(audit.ResourceTask, id, 0)
	rr := env.do(t, http.MethodPut, "/api/tasks/"+id, admin.Token, map[string]string{
		"status": "in-progress",
	}, &task)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin update = %d, body %s", rr.Code, rr.Body.String())
	}
	if task.UserID != owner.ID {
		t.Errorf("admin update changed owner to %q", task.UserID)
	}

	after, _ := env.auditStore.ListByResource(audit.ResourceTask, id, 0)
	if len(after) != len(before)+1 {
		t.Fatalf("audit entries = %d, want %d", len(after), len(before)+1)
	}
	if after[0].Action != audit.ActionUpdate || after[0].UserID != admin.ID {
		t.Errorf("newest entry = %+v, want admin update", after[0])
	}
}

func TestTaskNotFound(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com", false)

	rr := env.do(t, http.MethodGet, "/api/tasks/no-such-task", user.Token, nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestDueToday(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com", false)

	env.createTask(t, user.Token, "Today", "work", time.Now())
	env.createTask(t, user.Token, "Tomorrow", "work", time.Now().AddDate(0, 0, 1))
	env.createTask(t, user.Token, "Yesterday", "work", time.Now().AddDate(0, 0, -1))

	var tasks []models.Task
	rr := env.do(t, http.MethodGet, "/api/tasks/due-today", user.Token, nil, &tasks)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(tasks) != 1 || tasks[0].Name != "Today" {
		t.Errorf("due today = %+v, want just Today", tasks)
	}

	// Reading the view again must return the same result; the query
	// must not mutate any task.
	var again []models.Task
	rr = env.do(t, http.MethodGet, "/api/tasks/due-today", user.Token, nil, &again)
	if rr.Code != http.StatusOK {
		t.Fatalf("second read status = %d", rr.Code)
	}
	if !reflect.DeepEqual(tasks, again) {
		t.Errorf("second read differs: first = %+v, second = %+v", tasks, again)
	}
}

func TestUpcoming(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com", false)

	env.createTask(t, user.Token, "Later", "work", time.Now().AddDate(0, 0, 5))
	env.createTask(t, user.Token, "Sooner", "work", time.Now().AddDate(0, 0, 1))
	env.createTask(t, user.Token, "Past", "work", time.Now().AddDate(0, 0, -2))
	doneID := env.createTask(t, user.Token, "Done", "work", time.Now().AddDate(0, 0, 2))

	env.do(t, http.MethodPut, "/api/tasks/"+doneID, user.Token, map[string]string{
		"status": "completed",
	}, nil)

	var tasks []models.Task
	rr := env.do(t, http.MethodGet, "/api/tasks/upcoming", user.Token, nil, &tasks)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(tasks) != 2 {
		t.Fatalf("upcoming = %d tasks, want 2", len(tasks))
	}
	if tasks[0].Name != "Sooner" || tasks[1].Name != "Later" {
		t.Errorf("order = %s, %s, want Sooner, Later", tasks[0].Name, tasks[1].Name)
	}
}

func TestCompletedLastWeek(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com", false)

	for i := 0; i < 2; i++ {
		id := env.createTask(t, user.Token, "Done", "work", time.Now().AddDate(0, 0, 1))
		env.do(t, http.MethodPut, "/api/tasks/"+id, user.Token, map[string]string{
			"status": "completed",
		}, nil)
	}
	env.createTask(t, user.Token, "Open", "work", time.Now().AddDate(0, 0, 1))

	var days []models.DailyCount
	rr := env.do(t, http.MethodGet, "/api/tasks/completed-last-week", user.Token, nil, &days)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(days) != 7 {
		t.Fatalf("days = %d, want 7", len(days))
	}
	for i := 1; i < len(days); i++ {
		if days[i-1].Date >= days[i].Date {
			t.Errorf("days not ascending: %s then %s", days[i-1].Date, days[i].Date)
		}
	}
	today := days[len(days)-1]
	if today.Count != 2 {
		t.Errorf("today's count = %d, want 2", today.Count)
	}
	total := 0
	for _, d := range days {
		total += d.Count
	}
	if total != 2 {
		t.Errorf("week total = %d, want 2", total)
	}
}

func TestPopularCategories(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com", false)

	due := time.Now().AddDate(0, 0, 1)
	for i := 0; i < 3; i++ {
		env.createTask(t, user.Token, "w", "work", due)
	}
	for i := 0; i < 2; i++ {
		env.createTask(t, user.Token, "h", "home", due)
	}
	env.createTask(t, user.Token, "e", "errands", due)

	var cats []models.CategoryCount
	rr := env.do(t, http.MethodGet, "/api/tasks/popular-categories", user.Token, nil, &cats)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(cats) != 3 {
		t.Fatalf("categories = %d, want 3", len(cats))
	}
	if cats[0].Category != "work" || cats[0].Count != 3 {
		t.Errorf("top = %+v, want work/3", cats[0])
	}
	if cats[1].Category != "home" || cats[2].Category != "errands" {
		t.Errorf("order = %s, %s", cats[1].Category, cats[2].Category)
	}
}

func TestPopularCategoriesTopFive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com", false)

	due := time.Now().AddDate(0, 0, 1)
	for _, cat := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		env.createTask(t, user.Token, "t", cat, due)
	}

	var cats []models.CategoryCount
	env.do(t, http.MethodGet, "/api/tasks/popular-categories", user.Token, nil, &cats)
	if len(cats) != 5 {
		t.Errorf("categories = %d, want capped at 5", len(cats))
	}
}

func TestAdminAllTasks(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com", false)
	admin := env.register(t, "Root", "root@example.com", true)

	env.createTask(t, alice.Token, "Alice task", "home", time.Now().AddDate(0, 0, 1))

	var tasks []models.TaskWithOwner
	rr := env.do(t, http.MethodGet, "/api/tasks/admin/all", admin.Token, nil, &tasks)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Owner.Name != "Alice" || tasks[0].Owner.Email != "alice@example.com" {
		t.Errorf("owner = %+v, want Alice populated", tasks[0].Owner)
	}

	// Non-admin is rejected by the route guard.
	rr = env.do(t, http.MethodGet, "/api/tasks/admin/all", alice.Token, nil, nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", rr.Code)
	}
}
