package bitmap_interface

// Bitmap 定长位图接口，位从 0 开始编号
//
// 下标越界属于调用方错误，实现不做检查（可能 panic）
type Bitmap interface {
	Set(uint64)                 // 将指定位置的元素值设置为1
	Clear(uint64)               // 将指定位置的元素值设置为0
	Get(uint64) bool            // 查询指定位置的元素
	SetRange(start, n uint64)   // 将 [start, start+n) 全部置1
	ClearRange(start, n uint64) // 将 [start, start+n) 全部置0
	Count() uint64              // 查询bitmap的长度（位数）
	Resize(uint64)              // 调整长度，新增的位为0
	Reset()                     // 清空bitmap元素
	Cardinality() uint64        // 已设置值为1的元素个数
}

// ByteView 以小端字节序暴露底层存储的只读视图，供扫描器借用
type ByteView interface {
	Bytes() []byte
	Count() uint64
}

// WordView 以本机 uint64 字暴露底层存储的只读视图
type WordView interface {
	Words() []uint64
	Count() uint64
}

// Equal 逐位比较两个bitmap
func Equal(a, b Bitmap) bool {
	if a.Count() != b.Count() {
		return false
	}
	for i := uint64(0); i < a.Count(); i++ {
		if a.Get(i) != b.Get(i) {
			return false
		}
	}
	return true
}
