package notify

// announcePrefix はソーシャル投稿に付ける固定プレフィックス。
const announcePrefix = "📰 New Article: "

// announceBudget は投稿全体の文字数上限。
const announceBudget = 280

// AnnouncementText は記事タイトルからソーシャル投稿の本文を組み立てる。
// プレフィックスを含めた全体が280文字に収まるようタイトルを切り詰め、
// 切り詰めた場合は末尾に "..." を付ける。文字数はルーン単位で数える。
func AnnouncementText(title string) string {
	budget := announceBudget - len([]rune(announcePrefix))
	return announcePrefix + Truncate(title, budget)
}

// Truncate はsをルーン単位で最大limit文字に切り詰める。
// 切り詰めが発生した場合は末尾に "..." を付け、結果がlimitを超えないよう
// 本文はlimit-3文字までとする。
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
