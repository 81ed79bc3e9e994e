package entity

import "time"

const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionDelete       = "DELETE"
	ActionView         = "VIEW"
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFailed  = "LOGIN_FAILED"
	ActionLogout       = "LOGOUT"
	ActionAccess       = "ACCESS"
	ActionError        = "ERROR"
	ActionExport       = "EXPORT"
	ActionCleanup      = "CLEANUP"
)

// CriticalActions are kept for the extended retention window.
var CriticalActions = []string{ActionError, ActionLoginFailed, ActionDelete}

// MaxUserAgentLength caps the stored user agent.
const MaxUserAgentLength = 500

// AuditEntry is one immutable row of the activity trail. Actor fields are a
// snapshot taken when the entry was written, not a join against users.
type AuditEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time `gorm:"not null;index;index:idx_audit_logs_module_timestamp,priority:2" json:"timestamp"`
	UserID       *uint     `gorm:"index:idx_audit_logs_user_action,priority:1" json:"user_id"`
	UserName     string    `gorm:"size:255" json:"user_name"`
	UserType     string    `gorm:"size:50" json:"user_type"`
	UserEmail    string    `gorm:"size:255" json:"user_email"`
	SessionID    string    `gorm:"size:255" json:"session_id"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	UserAgent    string    `gorm:"size:500" json:"user_agent"`
	Action       string    `gorm:"size:50;not null;index:idx_audit_logs_user_action,priority:2" json:"action"`
	Module       string    `gorm:"size:50;not null;index:idx_audit_logs_module_timestamp,priority:1" json:"module"`
	EntityType   string    `gorm:"size:50;index:idx_audit_logs_entity,priority:1" json:"entity_type"`
	EntityID     *uint     `gorm:"index:idx_audit_logs_entity,priority:2" json:"entity_id"`
	Description  string    `gorm:"type:text" json:"description"`
	OldValues    Document  `json:"old_values"`
	NewValues    Document  `json:"new_values"`
	Endpoint     string    `gorm:"size:255" json:"endpoint"`
	Method       string    `gorm:"size:10" json:"method"`
	StatusCode   *int      `json:"status_code"`
	ResponseTime *float64  `json:"response_time"`
	ExtraData    Document  `json:"extra_data"`
}

func (AuditEntry) TableName() string {
	return "audit_logs"
}

func IsCriticalAction(action string) bool {
	for _, a := range CriticalActions {
		if a == action {
			return true
		}
	}
	return false
}
