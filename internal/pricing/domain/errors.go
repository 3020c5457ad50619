package domain

import "errors"

// 定价错误分类
// ErrInvalidParameter 表示单个输入非法，在任何网格计算开始前返回；
// ErrDegenerateModel 表示 r、σ、Δt 组合导致风险中性概率越界，输入各自合法但联合不自洽；
// ErrNumericOverflow 表示极端参数组合产生了非有限中间值。
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDegenerateModel  = errors.New("degenerate lattice model")
	ErrNumericOverflow  = errors.New("numeric overflow")
)
