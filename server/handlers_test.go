package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulsifi-app/pulsifi-backend/model"
	"github.com/pulsifi-app/pulsifi-backend/privilege"
	"github.com/pulsifi-app/pulsifi-backend/utils"
	"github.com/pulsifi-app/pulsifi-backend/utils/dotenv"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, _ := utils.CreateTempDB(t)
	require.Nil(t, privilege.EnsureDefaultGroups(db))
	return NewRouter(db, nil, nil), db
}

func createTestProfile(t *testing.T, db *gorm.DB, username string) *model.Profile {
	t.Helper()
	profile := model.Profile{Username: username, Email: username + "@example.com", Active: true}
	require.Nil(t, db.Create(&profile).Error)
	return &profile
}

func doRequest(router *gin.Engine, method, path, actorID string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set("X-Actor-Id", actorID)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestPing(t *testing.T) {
	router, _ := setupRouter(t)
	recorder := doRequest(router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestMissingActorIsUnauthorized(t *testing.T) {
	router, _ := setupRouter(t)
	recorder := doRequest(router, http.MethodPost, "/pulses", "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestInactiveActorIsUnauthorized(t *testing.T) {
	router, db := setupRouter(t)
	actor := createTestProfile(t, db, "ghost")
	require.Nil(t, db.Model(&model.Profile{}).Where("id = ?", actor.Id).
		UpdateColumn("active", false).Error)

	recorder := doRequest(router, http.MethodPost, "/pulses", actor.Id, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreatePulseAndReplyFlow(t *testing.T) {
	router, db := setupRouter(t)
	author := createTestProfile(t, db, "author")
	replier := createTestProfile(t, db, "replier")

	recorder := doRequest(router, http.MethodPost, "/pulses", author.Id, map[string]string{"message": "first pulse"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var pulseResp ContentResponse
	require.Nil(t, json.Unmarshal(recorder.Body.Bytes(), &pulseResp))
	assert.Equal(t, author.Id, pulseResp.CreatorID)
	assert.True(t, pulseResp.Visible)

	recorder = doRequest(router, http.MethodPost, "/replies", replier.Id, map[string]string{
		"parent_type": "pulse",
		"parent_id":   pulseResp.Id,
		"message":     "nice pulse",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var replyResp struct {
		Reply           ContentResponse `json:"reply"`
		OriginalPulseID string          `json:"original_pulse_id"`
	}
	require.Nil(t, json.Unmarshal(recorder.Body.Bytes(), &replyResp))
	assert.Equal(t, pulseResp.Id, replyResp.OriginalPulseID)
}

func TestReplyToMissingParentIsUnprocessable(t *testing.T) {
	router, db := setupRouter(t)
	actor := createTestProfile(t, db, "actor")

	recorder := doRequest(router, http.MethodPost, "/replies", actor.Id, map[string]string{
		"parent_type": "pulse",
		"parent_id":   "no-such-pulse",
		"message":     "into the void",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestHidePulseRequiresCreatorOrStaff(t *testing.T) {
	router, db := setupRouter(t)
	author := createTestProfile(t, db, "author")
	bystander := createTestProfile(t, db, "bystander")

	pulse := model.Pulse{CreatorID: author.Id, Message: "mine", Visible: true}
	require.Nil(t, db.Create(&pulse).Error)

	recorder := doRequest(router, http.MethodPost, "/pulses/"+pulse.Id+"/hide", bystander.Id, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doRequest(router, http.MethodPost, "/pulses/"+pulse.Id+"/hide", author.Id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var stored model.Pulse
	require.Nil(t, db.Where("id = ?", pulse.Id).First(&stored).Error)
	assert.False(t, stored.Visible)
}

func TestReactionRoutes(t *testing.T) {
	router, db := setupRouter(t)
	author := createTestProfile(t, db, "author")
	fan := createTestProfile(t, db, "fan")

	pulse := model.Pulse{CreatorID: author.Id, Message: "react to me", Visible: true}
	require.Nil(t, db.Create(&pulse).Error)

	recorder := doRequest(router, http.MethodPost, "/content/pulse/"+pulse.Id+"/like", fan.Id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(router, http.MethodPost, "/content/pulse/"+pulse.Id+"/dislike", fan.Id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var likes, dislikes int64
	require.Nil(t, db.Model(&model.PulseLike{}).Where("pulse_id = ?", pulse.Id).Count(&likes).Error)
	require.Nil(t, db.Model(&model.PulseDislike{}).Where("pulse_id = ?", pulse.Id).Count(&dislikes).Error)
	assert.Equal(t, int64(0), likes)
	assert.Equal(t, int64(1), dislikes)

	// profiles are not likeable content
	recorder = doRequest(router, http.MethodPost, "/content/profile/"+author.Id+"/like", fan.Id, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestStaffRoutesAreGated(t *testing.T) {
	router, db := setupRouter(t)
	civilian := createTestProfile(t, db, "civilian")
	staffer := createTestProfile(t, db, "staffer")
	require.Nil(t, privilege.AddToGroup(db, staffer.Id, model.GroupModerators))
	target := createTestProfile(t, db, "target")

	path := "/groups/" + model.GroupModerators + "/members/" + target.Id
	recorder := doRequest(router, http.MethodPost, path, civilian.Id, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doRequest(router, http.MethodPost, path, staffer.Id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var stored model.Profile
	require.Nil(t, db.Where("id = ?", target.Id).First(&stored).Error)
	assert.True(t, stored.IsStaff)
}

func TestFileReportWithoutModeratorsIsServiceUnavailable(t *testing.T) {
	router, db := setupRouter(t)
	reporter := createTestProfile(t, db, "reporter")
	author := createTestProfile(t, db, "author")
	pulse := model.Pulse{CreatorID: author.Id, Message: "spam", Visible: true}
	require.Nil(t, db.Create(&pulse).Error)

	recorder := doRequest(router, http.MethodPost, "/reports", reporter.Id, map[string]string{
		"target_type": "pulse",
		"target_id":   pulse.Id,
		"reason":      "unsolicited advertising",
		"category":    string(model.CategorySpam),
	})
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
