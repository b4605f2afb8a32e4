package domain

// VideoRecord 是一条通过校验、可进入 catalog 的视频记录。
//
// 生命周期：每个通过校验的 VideoDirectory 构造一次，之后不可变；
// 被排除的视频不会产生 VideoRecord（绝不就地修改）。
//
// 字段语义：
// - 可选字段缺失时保持 null（指针为 nil / 切片为 nil），绝不用 0 之类的误导默认值
// - Title 与 Uploader 对任何进入 catalog 的记录必须非空
type VideoRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Uploader string `json:"uploader"`

	UploadDate  *string `json:"upload_date"`
	Duration    *int64  `json:"duration"`
	ViewCount   *int64  `json:"view_count"`
	Description *string `json:"description"`

	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`

	Genre     string `json:"genre"`
	Path      string `json:"path"`      // 媒体文件相对扫描根目录的路径（posix 分隔符）
	Thumbnail string `json:"thumbnail"` // 相对扫描根目录；空串表示"无缩略图"
}
