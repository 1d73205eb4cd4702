package model

import "time"

// Observation は1日1回記録される感情の観測（出席記録）を表す。
// 作成後は更新も削除もされない。
type Observation struct {
	ID              string
	UserID          string
	OriginalText    string
	DetectedEmotion EmotionLabel
	ObservedOn      time.Time // サーバーローカル日付（時刻部分は00:00:00）
	CreatedAt       time.Time
}

// EmotionLabel は閉じた感情分類のいずれかの値を表す。
type EmotionLabel string

const (
	EmotionBahagia  EmotionLabel = "Bahagia"
	EmotionSedih    EmotionLabel = "Sedih"
	EmotionMarah    EmotionLabel = "Marah"
	EmotionTakut    EmotionLabel = "Takut"
	EmotionJijik    EmotionLabel = "Jijik"
	EmotionTerkejut EmotionLabel = "Terkejut"
	EmotionNetral   EmotionLabel = "Netral"
	EmotionCemas    EmotionLabel = "Cemas"
	EmotionSemangat EmotionLabel = "Semangat"
	EmotionLelah    EmotionLabel = "Lelah"
)

// DefaultEmotion は分類結果が正規のラベルに一致しない場合に使用するラベル。
const DefaultEmotion = EmotionNetral
