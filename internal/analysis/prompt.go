package analysis

import (
	"strings"

	"workwise/internal/domain"
)

// maxPromptTextLen caps how much extracted document text is embedded in a
// text-mode prompt.
const maxPromptTextLen = 50000

// Prompt is a built model instruction pair. System is prepended to the task
// by the gateway; Render embeds the document text for text-mode prompts.
type Prompt struct {
	System string
	Task   string
}

// Render returns the final prompt text. For text-mode prompts the document
// text replaces the placeholder, truncated to maxPromptTextLen runes.
func (p Prompt) Render(docText string) string {
	if !strings.Contains(p.Task, textPlaceholder) {
		return p.Task
	}
	runes := []rune(docText)
	if len(runes) > maxPromptTextLen {
		runes = runes[:maxPromptTextLen]
	}
	return strings.Replace(p.Task, textPlaceholder, string(runes), 1)
}

const textPlaceholder = "{{DOCUMENT_TEXT}}"

// BuildPrompt assembles the instruction for an analysis kind and mode.
// Deterministic and pure: the same kind and mode always yield the same text.
func BuildPrompt(kind domain.AnalysisKind, mode domain.AnalysisMode) Prompt {
	switch {
	case kind == domain.KindStructure && mode == domain.ModeText:
		return Prompt{System: structureSystem, Task: structureTextTask}
	case kind == domain.KindStructure && mode == domain.ModeImage:
		return Prompt{System: structureSystem, Task: structureImageTask}
	case kind == domain.KindBibliography && mode == domain.ModeText:
		return Prompt{System: bibliographySystem, Task: bibliographyTextTask}
	default:
		return Prompt{System: bibliographySystem, Task: bibliographyImageTask}
	}
}

// responseSchema is the fixed output contract every prompt demands, so the
// normalizer can parse responses deterministically.
const responseSchema = `Верни ТОЛЬКО валидный JSON без markdown разметки, без код-блоков и без пояснений, строго в формате:
{
    "verdict": "compliant | partially_compliant | non_compliant",
    "findings": [
        {
            "rule": "идентификатор правила (например: title_page, table_of_contents, reference_format)",
            "status": "pass | fail",
            "detail": "объяснение результата проверки",
            "excerpt": "цитата из документа, если применимо"
        }
    ],
    "recommendations": ["общие рекомендации по исправлению"]
}`

const structureSystem = `Ты - эксперт по оформлению научных и учебных работ согласно ГОСТ 7.32-2001. Проверяй структуру и оформление документа. Отвечай ТОЛЬКО валидным JSON без markdown разметки.`

const structureRules = `ТРЕБОВАНИЯ ГОСТ 7.32-2001 ДЛЯ ПРОВЕРКИ:

1. ТИТУЛЬНЫЙ ЛИСТ (rule: title_page):
   - Наименование организации (вуза)
   - Кафедра/факультет
   - Тип документа (РЕФЕРАТ, КУРСОВАЯ РАБОТА и т.д.)
   - Тема работы
   - Сведения об авторе (ФИО, группа, курс)
   - Сведения о руководителе (должность, ФИО)
   - Город и год

2. СОДЕРЖАНИЕ / ОГЛАВЛЕНИЕ (rule: table_of_contents):
   - Наличие всех разделов с номерами страниц

3. ВВЕДЕНИЕ (rule: introduction):
   - Актуальность темы, цель работы, задачи работы
   - Объект и предмет исследования, методы исследования

4. ОСНОВНАЯ ЧАСТЬ (rule: main_body):
   - Наличие разделов и подразделов, сквозная нумерация разделов

5. ЗАКЛЮЧЕНИЕ (rule: conclusion):
   - Выводы по работе

6. СПИСОК ЛИТЕРАТУРЫ (rule: references):
   - Наличие и количество источников

7. ОФОРМЛЕНИЕ (rule: formatting):
   - Шрифт Times New Roman, 14 пт
   - Поля документа, нумерация страниц, оформление заголовков

Для каждого пункта верни отдельный элемент findings со статусом pass или fail.`

const structureTextTask = `Проанализируй текст документа на соответствие ГОСТ 7.32-2001.

` + structureRules + `

ТЕКСТ ДОКУМЕНТА:
` + textPlaceholder + `

` + responseSchema

const structureImageTask = `Проанализируй изображения страниц документа на соответствие ГОСТ 7.32-2001. Читай структуру визуально: титульный лист, расположение содержания, видимую нумерацию разделов на страницах.

` + structureRules + `

` + responseSchema

const bibliographySystem = `Ты - эксперт по библиографическому оформлению согласно ГОСТ Р 7.0.5-2008. Находи все библиографические ссылки и проверяй каждую. Отвечай ТОЛЬКО валидным JSON без markdown разметки.`

const bibliographyRules = `ПРАВИЛА ОФОРМЛЕНИЯ ПО ГОСТ Р 7.0.5-2008:

1. КНИГА 1-3 автора (rule: reference_book):
   Фамилия И. О. Название книги. Город: Издательство, Год. Объем с.
   Пример: Иванов А. А. Основы программирования. М.: Наука, 2020. 300 с.

2. СТАТЬЯ ИЗ ЖУРНАЛА (rule: reference_article):
   Фамилия И. О. Название статьи // Название журнала. Год. № Номер. С. страницы.
   Пример: Петров Б. Б. Новые технологии // Вестник науки. 2021. № 5. С. 10-15.

3. ЭЛЕКТРОННЫЙ РЕСУРС (rule: reference_online):
   Название: [сайт]. URL: адрес (дата обращения: ДД.ММ.ГГГГ).

4. КЛЮЧЕВЫЕ ПРАВИЛА (rule: reference_format):
   - Фамилия И. О. (с пробелом между инициалами)
   - Двойной слеш // перед названием журнала
   - С. для страниц (прописная), с. для объёма (строчная)
   - Города: М. (Москва), СПб. (Санкт-Петербург)

Найди ВСЕ ссылки в списке литературы. Для каждой ссылки верни элемент findings: rule - тип источника, status - pass если оформление верное, fail если есть ошибки, detail - описание ошибок и исправленный вариант, excerpt - исходный текст ссылки.`

const bibliographyTextTask = `Проанализируй текст документа и найди все библиографические ссылки. Проверь каждую на соответствие ГОСТ Р 7.0.5-2008.

` + bibliographyRules + `

ТЕКСТ ДОКУМЕНТА:
` + textPlaceholder + `

` + responseSchema

const bibliographyImageTask = `Проанализируй изображения страниц документа, визуально найди раздел со списком литературы и все библиографические ссылки в нём. Проверь каждую на соответствие ГОСТ Р 7.0.5-2008.

` + bibliographyRules + `

` + responseSchema
