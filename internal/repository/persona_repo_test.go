package repository

import (
	"context"
	"testing"

	"viralyst_dev_v1_202608/internal/model"
)

func TestPersonaRepo_CreateAndList(t *testing.T) {
	repo := NewPersonaRepository(setupRepoTestDB(t))
	ctx := context.Background()

	personas := []model.Persona{
		{Name: "Persona Segment 1", Size: 10, Pct: 62, UploadID: "u1"},
		{Name: "Persona Segment 2", Size: 6, Pct: 38, UploadID: "u1"},
	}
	if err := repo.CreateBatch(ctx, personas); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("画像数 = %d, want 2", len(list))
	}
	// 按 ID 升序
	if list[0].Name != "Persona Segment 1" {
		t.Errorf("排序不对: %s", list[0].Name)
	}
}

func TestPersonaRepo_GetByID(t *testing.T) {
	repo := NewPersonaRepository(setupRepoTestDB(t))
	ctx := context.Background()

	persona := &model.Persona{Name: "Persona Segment 1", Description: "Average Age: 30"}
	if err := repo.Create(ctx, persona); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, persona.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Description != "Average Age: 30" {
		t.Errorf("Description = %s", got.Description)
	}

	if _, err := repo.GetByID(ctx, 99999); err == nil {
		t.Error("不存在的 ID 应报错")
	}
}

func TestPersonaRepo_ListByUpload(t *testing.T) {
	repo := NewPersonaRepository(setupRepoTestDB(t))
	ctx := context.Background()

	_ = repo.CreateBatch(ctx, []model.Persona{
		{Name: "A", UploadID: "u1"},
		{Name: "B", UploadID: "u2"},
		{Name: "C", UploadID: "u1"},
	})

	list, err := repo.ListByUpload(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUpload() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("u1 画像数 = %d, want 2", len(list))
	}
}

func TestPersonaRepo_ReplaceAll(t *testing.T) {
	repo := NewPersonaRepository(setupRepoTestDB(t))
	ctx := context.Background()

	_ = repo.CreateBatch(ctx, []model.Persona{
		{Name: "Old 1", UploadID: "u1"},
		{Name: "Old 2", UploadID: "u1"},
	})

	err := repo.ReplaceAll(ctx, []model.Persona{
		{Name: "New 1", UploadID: "u2"},
	})
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "New 1" {
		t.Errorf("替换结果不对: %+v", list)
	}
}

func TestPersonaRepo_DeleteByUpload(t *testing.T) {
	repo := NewPersonaRepository(setupRepoTestDB(t))
	ctx := context.Background()

	_ = repo.CreateBatch(ctx, []model.Persona{
		{Name: "A", UploadID: "u1"},
		{Name: "B", UploadID: "u2"},
	})

	if err := repo.DeleteByUpload(ctx, "u1"); err != nil {
		t.Fatalf("DeleteByUpload() error = %v", err)
	}

	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].UploadID != "u2" {
		t.Errorf("删除结果不对: %+v", list)
	}
}
