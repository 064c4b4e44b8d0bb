package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tasklist-api/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, title string, pos domain.InsertPosition) domain.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), title, domain.EmptyDescription, pos)
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return task
}

func listOrders(t *testing.T, s *Store) map[string]int {
	t.Helper()
	tasks, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	orders := make(map[string]int, len(tasks))
	for _, task := range tasks {
		orders[task.Title] = task.SortOrder
	}
	return orders
}

func TestCreateTaskPrependShiftsExistingRows(t *testing.T) {
	s := openTestStore(t)
	mustCreate(t, s, "a", domain.InsertEnd)
	mustCreate(t, s, "b", domain.InsertEnd)
	mustCreate(t, s, "c", domain.InsertEnd)

	created := mustCreate(t, s, "Buy milk", domain.InsertStart)
	if created.SortOrder != 0 {
		t.Fatalf("expected prepended task at order 0, got %d", created.SortOrder)
	}
	if created.Description != domain.EmptyDescription {
		t.Fatalf("expected normalized description, got %q", created.Description)
	}

	orders := listOrders(t, s)
	want := map[string]int{"Buy milk": 0, "a": 1, "b": 2, "c": 3}
	for title, order := range want {
		if orders[title] != order {
			t.Fatalf("expected %q at order %d, got %d", title, order, orders[title])
		}
	}

	seen := make(map[int]string, len(orders))
	for title, order := range orders {
		if prev, dup := seen[order]; dup {
			t.Fatalf("duplicate sort order %d shared by %q and %q", order, prev, title)
		}
		seen[order] = title
	}
}

func TestCreateTaskAppendAfterMax(t *testing.T) {
	s := openTestStore(t)
	first := mustCreate(t, s, "first", domain.InsertEnd)
	if first.SortOrder != 0 {
		t.Fatalf("expected first append at order 0, got %d", first.SortOrder)
	}
	second := mustCreate(t, s, "second", domain.InsertEnd)
	if second.SortOrder != 1 {
		t.Fatalf("expected second append at order 1, got %d", second.SortOrder)
	}

	// Append keeps existing rows untouched.
	if orders := listOrders(t, s); orders["first"] != 0 {
		t.Fatalf("expected first task to stay at order 0, got %d", orders["first"])
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "a", domain.InsertEnd)
	b := mustCreate(t, s, "b", domain.InsertEnd)
	if err := s.DeleteTask(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c := mustCreate(t, s, "c", domain.InsertEnd)
	if c.ID <= b.ID {
		t.Fatalf("expected fresh id after delete, got %d (deleted %d)", c.ID, b.ID)
	}
}

func TestReorderAssignsInputOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", domain.InsertEnd)
	b := mustCreate(t, s, "B", domain.InsertEnd)
	c := mustCreate(t, s, "C", domain.InsertEnd)

	assignments, err := domain.BuildOrderAssignments([]int64{c.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("build assignments: %v", err)
	}
	if err := s.ReorderTasks(ctx, assignments); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantTitles := []string{"C", "A", "B"}
	for i, task := range tasks {
		if task.Title != wantTitles[i] {
			t.Fatalf("position %d: expected %q, got %q", i, wantTitles[i], task.Title)
		}
		if task.SortOrder != i {
			t.Fatalf("position %d: expected sort order %d, got %d", i, i, task.SortOrder)
		}
	}
}

func TestReorderIsStableRegardlessOfPriorOrders(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	// Prepend-created tasks produce reversed initial order with prior shifts.
	a := mustCreate(t, s, "A", domain.InsertStart)
	b := mustCreate(t, s, "B", domain.InsertStart)
	c := mustCreate(t, s, "C", domain.InsertStart)

	assignments, err := domain.BuildOrderAssignments([]int64{a.ID, b.ID, c.ID})
	if err != nil {
		t.Fatalf("build assignments: %v", err)
	}
	if err := s.ReorderTasks(ctx, assignments); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	orders := listOrders(t, s)
	if orders["A"] != 0 || orders["B"] != 1 || orders["C"] != 2 {
		t.Fatalf("unexpected orders after reorder: %#v", orders)
	}
}

func TestReorderUnknownIDRollsBackWholeOperation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", domain.InsertEnd)
	b := mustCreate(t, s, "B", domain.InsertEnd)

	before := listOrders(t, s)

	assignments, err := domain.BuildOrderAssignments([]int64{b.ID, 9999, a.ID})
	if err != nil {
		t.Fatalf("build assignments: %v", err)
	}
	err = s.ReorderTasks(ctx, assignments)
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	after := listOrders(t, s)
	for title, order := range before {
		if after[title] != order {
			t.Fatalf("expected %q to keep order %d after failed reorder, got %d", title, order, after[title])
		}
	}
}

func TestDeleteLeavesGapsWithoutRenumbering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "A", domain.InsertEnd)
	b := mustCreate(t, s, "B", domain.InsertEnd)
	mustCreate(t, s, "C", domain.InsertEnd)

	if err := s.DeleteTask(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	orders := listOrders(t, s)
	if orders["A"] != 0 || orders["C"] != 2 {
		t.Fatalf("expected untouched orders with a gap, got %#v", orders)
	}
}

func TestDeleteNotFound(t *testing.T) {
	s := openTestStore(t)
	if err := s.DeleteTask(context.Background(), 9999); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestToggleTask(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := mustCreate(t, s, "A", domain.InsertEnd)

	toggled, err := s.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsCompleted {
		t.Fatalf("expected task to be completed after toggle")
	}

	toggled, err = s.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if toggled.IsCompleted {
		t.Fatalf("expected task to be open after second toggle")
	}
}

func TestToggleNotFoundHasNoSideEffect(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "A", domain.InsertEnd)

	_, err := s.ToggleTask(ctx, 9999)
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].IsCompleted {
		t.Fatalf("expected single untouched task, got %#v", tasks)
	}
}

func TestUpdateTask(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	task := mustCreate(t, s, "old", domain.InsertEnd)

	updated, err := s.UpdateTask(ctx, task.ID, "new title", "new description")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "new title" || updated.Description != "new description" {
		t.Fatalf("unexpected task after update: %#v", updated)
	}
	if updated.SortOrder != task.SortOrder {
		t.Fatalf("expected update to keep sort order %d, got %d", task.SortOrder, updated.SortOrder)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.UpdateTask(context.Background(), 42, "t", "d"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetTask(context.Background(), 1); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

// Full gesture-to-storage pass: tasks [A(0), B(1), C(2)], drag C to the
// top, release, reorder with the resolved sequence.
func TestDragToTopReorderScenario(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", domain.InsertEnd)
	b := mustCreate(t, s, "B", domain.InsertEnd)
	c := mustCreate(t, s, "C", domain.InsertEnd)

	resolver := domain.NewDragResolver()
	if err := resolver.Grab(2, 3); err != nil {
		t.Fatalf("grab: %v", err)
	}
	resolver.Hover(0, 0.2)
	from, insertAt, ok := resolver.Release()
	if !ok {
		t.Fatalf("expected a move")
	}

	ids := domain.ApplyMove([]int64{a.ID, b.ID, c.ID}, from, insertAt)
	assignments, err := domain.BuildOrderAssignments(ids)
	if err != nil {
		t.Fatalf("build assignments: %v", err)
	}
	if err := s.ReorderTasks(ctx, assignments); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	orders := listOrders(t, s)
	if orders["C"] != 0 || orders["A"] != 1 || orders["B"] != 2 {
		t.Fatalf("unexpected orders after drag reorder: %#v", orders)
	}
}

func TestListTasksEmpty(t *testing.T) {
	s := openTestStore(t)
	tasks, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %#v", tasks)
	}
}
