package model

// SysUser is the back-office operator account. Session issuance lives in the
// dashboard layer; this table only anchors ownership of integrations,
// products and notifications.
type SysUser struct {
	BaseModel
	Username       string `gorm:"size:50;uniqueIndex;not null"`
	Email          string `gorm:"size:100;index"`
	Role           string `gorm:"size:20;default:'seller'"`
	OrganizationID int64  `gorm:"index"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
