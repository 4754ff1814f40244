// Package exemplar holds the hand-curated anchor examples sent with every
// classification request, independent of the loaded corpus.
package exemplar

import "socialguard/internal/models"

// PerCategory is the number of static exemplars for each category.
const PerCategory = 5

// Set maps each category to its fixed exemplars.
type Set [models.NumCategories][PerCategory]models.Exemplar

var static = Set{
	models.Neutral: {
		{Text: "Bu çok güzel bir paylaşım olmuş teşekkürler", Label: models.Neutral},
		{Text: "Harika bir içerik eline sağlık", Label: models.Neutral},
		{Text: "Çok beğendim başarılar dilerim", Label: models.Neutral},
		{Text: "Süper olmuş devamını bekliyorum", Label: models.Neutral},
		{Text: "İyi akşamlar herkese güzel videoymuş", Label: models.Neutral},
	},
	models.DirectInsult: {
		{Text: "Sen gerçekten aptalsın ya", Label: models.DirectInsult},
		{Text: "Ne kadar salak bir insansın", Label: models.DirectInsult},
		{Text: "Gerizekalı mısın sen", Label: models.DirectInsult},
		{Text: "Mal mısın nesin anlamadım", Label: models.DirectInsult},
		{Text: "Senin gibi dangalaklar yüzünden", Label: models.DirectInsult},
	},
	models.SexistImplication: {
		{Text: "Kadınlar hep böyle yapar işte", Label: models.SexistImplication},
		{Text: "Kızlar anlamaz bunları erkek işi", Label: models.SexistImplication},
		{Text: "Sen kadınsın ne anlarsın", Label: models.SexistImplication},
		{Text: "Erkekler böyle şeyleri yapamaz", Label: models.SexistImplication},
		{Text: "Kadın olduğun belli zaten", Label: models.SexistImplication},
	},
	models.Sarcasm: {
		{Text: "Haha ne kadar komiksin (!) gerçekten", Label: models.Sarcasm},
		{Text: "Vay be ne kadar zekilsin sen öyle", Label: models.Sarcasm},
		{Text: "Aferin sana çok başarılısın (!) devam et", Label: models.Sarcasm},
		{Text: "Hmm anladık ne kadar özelsin", Label: models.Sarcasm},
		{Text: "Eee tabii sen bilirsin en iyisini", Label: models.Sarcasm},
	},
	models.AppearanceCriticism: {
		{Text: "Çok çirkinsin ya böyle olunmaz", Label: models.AppearanceCriticism},
		{Text: "Ne kadar şişmansın sen", Label: models.AppearanceCriticism},
		{Text: "Çok zayıfsın hiç güzel değil", Label: models.AppearanceCriticism},
		{Text: "Bu kıyafetle çok kötü görünüyorsun", Label: models.AppearanceCriticism},
		{Text: "Saçların berbat keşke değiştirsen", Label: models.AppearanceCriticism},
	},
}

// Static returns the static exemplar set. The value is a copy.
func Static() Set {
	return static
}

// For returns the exemplars of one category.
func (s Set) For(c models.Category) []models.Exemplar {
	if !c.Valid() {
		return nil
	}
	out := make([]models.Exemplar, PerCategory)
	copy(out, s[c][:])
	return out
}

// All returns every exemplar in category order.
func (s Set) All() []models.Exemplar {
	out := make([]models.Exemplar, 0, models.NumCategories*PerCategory)
	for _, group := range s {
		out = append(out, group[:]...)
	}
	return out
}
