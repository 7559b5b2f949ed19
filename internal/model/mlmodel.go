/**
 * 模型:ML模型状态模型
 * @author: sun977
 * @date: 2025.08.29
 * @description: 模型状态登记,每个模型名只有一行,upsert时原地更新
 * @func: ModelStatus 结构体及JSONMap类型
 */
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ModelType 模型类型枚举
type ModelType string

const (
	ModelTypeLSTM        ModelType = "LSTM"        // 长短期记忆网络
	ModelTypeCNN         ModelType = "CNN"         // 卷积神经网络
	ModelTypeTransformer ModelType = "Transformer" // Transformer
)

// IsValid 判断模型类型是否合法
func (t ModelType) IsValid() bool {
	switch t {
	case ModelTypeLSTM, ModelTypeCNN, ModelTypeTransformer:
		return true
	}
	return false
}

// ModelState 模型状态枚举
// 无状态转移图约束，任意状态可以覆盖任意状态(运维手工纠偏是有意保留的能力)
type ModelState string

const (
	ModelStateActive   ModelState = "active"   // 运行中
	ModelStateTraining ModelState = "training" // 训练中
	ModelStateOffline  ModelState = "offline"  // 离线
)

// IsValid 判断模型状态是否合法
func (s ModelState) IsValid() bool {
	switch s {
	case ModelStateActive, ModelStateTraining, ModelStateOffline:
		return true
	}
	return false
}

// JSONMap 不透明结构化元数据,以JSON文本落库
type JSONMap map[string]interface{}

// Value 实现driver.Valuer接口
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(data), nil
}

// Scan 实现sql.Scanner接口
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type: %T", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}

// ModelStatus ML模型状态模型
type ModelStatus struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`                                     // 记录ID，主键自增
	Name      string     `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required"`          // 模型名，唯一索引
	ModelType ModelType  `json:"model_type" gorm:"not null;size:30" validate:"required"`                 // 模型类型
	Status    ModelState `json:"status" gorm:"not null;size:20;index" validate:"required"`               // 模型状态
	Accuracy  *float64   `json:"accuracy,omitempty" gorm:"comment:准确率,闭区间[0,1],可为空" validate:"omitempty,gte=0,lte=1"` // 准确率，可选
	Version   string     `json:"version" gorm:"size:50"`                                                 // 版本号，自由文本
	Metadata  JSONMap    `json:"metadata,omitempty" gorm:"type:json;comment:不透明元数据"`                    // 元数据
	CreatedAt time.Time  `json:"created_at"`                                                             // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                                                             // 更新时间，每次upsert刷新
}

// TableName 指定模型状态表名
func (ModelStatus) TableName() string {
	return "model_statuses"
}

// IsActive 检查模型是否处于运行状态
func (m *ModelStatus) IsActive() bool {
	return m.Status == ModelStateActive
}
