package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

func templateRow(t model.WorkflowTemplate) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = t.ID
		*(dest[1].(*string)) = t.Name
		*(dest[2].(*string)) = t.Module
		*(dest[3].(*string)) = t.Description
		*(dest[4].(*bool)) = t.IsDefault
		*(dest[5].(*bool)) = t.IsActive
		*(dest[6].(*int)) = t.Version
		*(dest[7].(*string)) = t.OrganizationID
		*(dest[8].(*time.Time)) = t.CreatedAt
		*(dest[9].(*time.Time)) = t.UpdatedAt
		return nil
	}}
}

func noRows() *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

func TestNewTemplateService(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)

	require.NotNil(t, svc)
	assert.Equal(t, db, svc.db)
}

// ---------- Create ----------

func TestTemplateService_Create_NonDefault(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	tmpl := &model.WorkflowTemplate{
		Name:           "Standard work order approval",
		Module:         model.ModuleWorkOrders,
		OrganizationID: "org-1",
	}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	err := svc.Create(ctx, tmpl)
	require.NoError(t, err)
	assert.NotEmpty(t, tmpl.ID)
	assert.Equal(t, 1, tmpl.Version)
	db.AssertExpectations(t)
	db.AssertNotCalled(t, "Begin", ctx)
}

func TestTemplateService_Create_DefaultUnsetsPriorInTx(t *testing.T) {
	db := &mockDB{}
	tx := &mockTx{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	tmpl := &model.WorkflowTemplate{
		Name:           "New default",
		Module:         model.ModuleWorkOrders,
		OrganizationID: "org-1",
		IsDefault:      true,
	}

	db.On("Begin", ctx).Return(tx, nil)
	tx.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil).Twice()
	tx.On("Commit", ctx).Return(nil)

	err := svc.Create(ctx, tmpl)
	require.NoError(t, err)
	db.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestTemplateService_Create_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	tmpl := &model.WorkflowTemplate{Name: "x", Module: model.ModuleWorkOrders}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("db error"))

	err := svc.Create(ctx, tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create workflow template")
}

// ---------- GetByID / GetDefault ----------

func TestTemplateService_GetByID_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	want := model.WorkflowTemplate{
		ID:             "wft_abc",
		Name:           "Standard",
		Module:         model.ModuleWorkOrders,
		IsDefault:      true,
		IsActive:       true,
		Version:        2,
		OrganizationID: "org-1",
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(templateRow(want))

	got, err := svc.GetByID(ctx, "wft_abc")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Module, got.Module)
	assert.True(t, got.IsDefault)
}

func TestTemplateService_GetByID_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(noRows())

	got, err := svc.GetByID(ctx, "nonexistent")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTemplateService_GetDefault_None(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(noRows())

	_, err := svc.GetDefault(ctx, model.ModuleSafetyIncidents, "org-1")
	assert.ErrorIs(t, err, ErrNoDefaultTemplate)
}

// ---------- SetDefault ----------

func TestTemplateService_SetDefault_BothWritesInOneTx(t *testing.T) {
	db := &mockDB{}
	tx := &mockTx{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	existing := model.WorkflowTemplate{
		ID:             "wft_new",
		Module:         model.ModuleWorkOrders,
		OrganizationID: "org-1",
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(templateRow(existing))
	db.On("Begin", ctx).Return(tx, nil)
	tx.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil).Twice()
	tx.On("Commit", ctx).Return(nil)

	err := svc.SetDefault(ctx, "wft_new")
	require.NoError(t, err)
	db.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestTemplateService_SetDefault_SecondWriteMissingRowRollsBack(t *testing.T) {
	db := &mockDB{}
	tx := &mockTx{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	existing := model.WorkflowTemplate{ID: "wft_gone", Module: model.ModuleWorkOrders, OrganizationID: "org-1"}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(templateRow(existing))
	db.On("Begin", ctx).Return(tx, nil)
	tx.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil).Once()
	tx.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil).Once()

	err := svc.SetDefault(ctx, "wft_gone")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	tx.AssertNotCalled(t, "Commit", ctx)
}

// ---------- Activate ----------

func TestTemplateService_Activate_EmptyGraphRejected(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(newEmptyMockRows(), nil).Twice()

	err := svc.Activate(ctx, "wft_empty")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStepGraph)
	db.AssertNotCalled(t, "Exec", ctx, mock.AnythingOfType("string"), mock.Anything)
}

// ---------- Update / Delete ----------

func TestTemplateService_Update_NoFieldsIsNoOp(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)

	err := svc.Update(context.Background(), "wft_abc", nil, nil)
	require.NoError(t, err)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestTemplateService_Update_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	name := "renamed"
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := svc.Update(ctx, "nonexistent", &name, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTemplateService_Delete_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewTemplateService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := svc.Delete(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}
