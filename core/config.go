package core

// RankingConfig 是排序相关的配置接口，用于提供默认值。
type RankingConfig interface {
	// DefaultTopN 返回默认返回条数
	DefaultTopN() int

	// MaxTopN 返回允许的最大返回条数
	MaxTopN() int
}

// DefaultRankingConfig 是默认的排序配置实现。
type DefaultRankingConfig struct{}

func (c *DefaultRankingConfig) DefaultTopN() int {
	return 3
}

func (c *DefaultRankingConfig) MaxTopN() int {
	return 3
}
