/**
 * 模型:会话模型
 * @author: sun977
 * @date: 2025.09.04
 * @description: 既有会话数据,由外部认证系统写入,本服务只读
 * @func: SessionData 结构体
 */
package model

import "time"

// SessionData 会话数据
// 由外部认证系统建立并存储在Redis中,本服务只消费不创建
type SessionData struct {
	UserID    uint      `json:"user_id"`    // 用户ID
	Username  string    `json:"username"`   // 用户名
	LoginAt   time.Time `json:"login_at"`   // 登录时间
	ClientIP  string    `json:"client_ip"`  // 登录IP
	UserAgent string    `json:"user_agent"` // 登录UA
}
