package config

import "time"

// 核心默认值，与产品参考行为保持一致
const (
	defaultBroadcastInterval = 30 * time.Second // 快照广播参考周期
	defaultWriteWait         = 10 * time.Second // 单个连接写超时
	defaultIdleTimeout       = 90 * time.Second // 空闲连接超时
	defaultMaxMessageSize    = 512              // 入站控制消息上限(字节)
	defaultObservationMax    = 100              // 近期观测保留条数
	defaultObservationTTL    = 30 * time.Minute // 近期观测保留时间
)
