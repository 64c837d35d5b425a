package handlers

import (
	"context"
	"net/http"
	"time"

	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSync struct {
	runCycleErr   error
	executeNowErr error

	runCycleCalls int
	lastExecuteID int
}

func (m *mockSync) RunCycle(ctx context.Context, now time.Time) error {
	m.runCycleCalls++
	return m.runCycleErr
}
func (m *mockSync) ExecuteNow(ctx context.Context, triggerID int) error {
	m.lastExecuteID = triggerID
	return m.executeNowErr
}

type mockTriggers struct {
	trigger       models.Trigger
	triggers      []models.Trigger
	toggleMessage string
	err           error

	lastCreateParams service.TriggerParams
	lastUpdateID     int
	lastToggleID     int
	lastDeleteID     int
	createCalls      int
}

func (m *mockTriggers) Create(ctx context.Context, p service.TriggerParams) (models.Trigger, error) {
	m.createCalls++
	m.lastCreateParams = p
	return m.trigger, m.err
}
func (m *mockTriggers) Update(ctx context.Context, id int, p service.TriggerParams) (models.Trigger, error) {
	m.lastUpdateID = id
	return m.trigger, m.err
}
func (m *mockTriggers) Get(ctx context.Context, id int) (models.Trigger, error) {
	return m.trigger, m.err
}
func (m *mockTriggers) List(ctx context.Context) ([]models.Trigger, error) {
	return m.triggers, m.err
}
func (m *mockTriggers) Toggle(ctx context.Context, id int, now time.Time) (models.Trigger, string, error) {
	m.lastToggleID = id
	return m.trigger, m.toggleMessage, m.err
}
func (m *mockTriggers) Delete(ctx context.Context, id int) error {
	m.lastDeleteID = id
	return m.err
}

type mockDevices struct {
	device  models.Device
	devices []models.Device
	err     error

	lastDeleteID int
}

func (m *mockDevices) Get(ctx context.Context, id int) (models.Device, error) {
	return m.device, m.err
}
func (m *mockDevices) List(ctx context.Context) ([]models.Device, error) {
	return m.devices, m.err
}
func (m *mockDevices) Delete(ctx context.Context, id int) error {
	m.lastDeleteID = id
	return m.err
}

type mockLogs struct {
	logs []models.TriggerLog
	err  error

	lastListTriggerID int
	lastListLimit     int
	lastDeleteID      int
}

func (m *mockLogs) List(ctx context.Context, triggerID, limit int) ([]models.TriggerLog, error) {
	m.lastListTriggerID = triggerID
	m.lastListLimit = limit
	return m.logs, m.err
}
func (m *mockLogs) DeleteForTrigger(ctx context.Context, triggerID int) error {
	m.lastDeleteID = triggerID
	return m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
