/*
 * @author: sun977
 * @date: 2025.09.06
 * @description: 预警模型测试
 */
package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEffectivelyActive(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name     string
		active   bool
		expires  *time.Time
		expected bool
	}{
		{"active without expiry", true, nil, true},
		{"active not yet expired", true, &future, true},
		{"active but expired", true, &past, false},
		{"deactivated without expiry", false, nil, false},
		{"deactivated and not expired", false, &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := &WeatherAlert{Active: tt.active, ExpiresAt: tt.expires}
			assert.Equal(t, tt.expected, alert.IsEffectivelyActive(now))
		})
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, AlertTypeThunderstorm.IsValid())
	assert.False(t, AlertType("tornado").IsValid())

	assert.True(t, AlertSeveritySevere.IsValid())
	assert.False(t, AlertSeverity("critical").IsValid())

	assert.True(t, ModelTypeLSTM.IsValid())
	assert.False(t, ModelType("GAN").IsValid())

	assert.True(t, ModelStateTraining.IsValid())
	assert.False(t, ModelState("paused").IsValid())
}
