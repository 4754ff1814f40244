package classifier

import (
	"fmt"
	"strings"

	"socialguard/internal/exemplar"
	"socialguard/internal/models"
)

const promptHeader = `Sen bir yorum sınıflandırma uzmanısın. Aşağıdaki yorumu analiz et ve kategorilerden birine sınıflandır.

KATEGORİLER:
0: No Harassment / Neutral (Zararsız/Nötr) - Normal, zararsız yorumlar
1: Direct Insult / Profanity (Doğrudan Hakaret/Küfür) - Açık hakaret ve küfür
2: Sexist / Sexual Implication (Cinsiyetçi/Cinsel İmada Bulunma) - Cinsiyetçi veya cinsel içerik
3: Sarcasm / Microaggression (Alaycı/Mikroagresyon) - Alaycı veya gizli saldırganlık
4: Appearance-based Criticism (Görünüm Temelli Eleştiri) - Fiziksel görünüm eleştirisi

ÖNEMLİ KURALLAR:
- "kadın", "erkek" gibi kelimeler tek başına zararlı DEĞİLDİR
- Önce eğitim örneklerini öğren, sonra input'a benzer örneklere odaklan
`

const promptFooter = `
Sadece kategori numarasını (0-4 arası) döndür. Açıklama yapma, sadece sayıyı ver.
`

// BuildPrompt composes the request sent to the generator: category
// definitions, every static exemplar, the ranked similar exemplars and the
// query text.
func BuildPrompt(static exemplar.Set, similar []models.ScoredExemplar, text string) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	b.WriteString("\nEĞİTİM ÖRNEKLERİ:\n")
	for _, ex := range static.All() {
		fmt.Fprintf(&b, "%q -> %d (%s)\n", ex.Text, ex.Label, ex.Label.Name())
	}

	b.WriteString("\nİNPUT'A EN BENZER ÖRNEKLER:\n")
	for _, ex := range similar {
		fmt.Fprintf(&b, "%q -> %d (%s) [Benzerlik: %.2f]\n", ex.Text, ex.Label, ex.Label.Name(), ex.Similarity)
	}

	fmt.Fprintf(&b, "\nŞİMDİ ANALİZ EDİLECEK YORUM:\n%q\n", text)
	b.WriteString(promptFooter)
	return b.String()
}
