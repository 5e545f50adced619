package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"
)

// Welcome texts. The three variants differ slightly on purpose: offline start,
// first start against an empty store, and an explicit new chat.
const (
	WelcomeMessageOffline = "أهلاً بك! أنا مساعدك القانوني الذكي. يمكنك طرح أسئلة قانونية عامة، أو رفع مستند لمناقشته، أو أن تطلب مني البحث في قاعدة البيانات القانونية."
	WelcomeMessageFresh   = "أهلاً بك! أنا مساعدك القانوني الذكي. يمكنك طرح أسئلة قانونية عامة، رفع مستند لمناقشته، أو أن تطلب مني البحث في قاعدة البيانات القانونية."
	WelcomeMessageNewChat = "أهلاً بك! أنا مساعدك القانوني الذكي. كيف يمكنني خدمتك اليوم؟ يمكنك طرح الأسئلة أو طلب البحث في قاعدة البيانات."
)

// ============================================================
// MODEL SESSION
// ============================================================

const LegalAssistantSystemInstruction = `مهمتك الوحيدة والمحددة هي العمل كمساعد قانوني. يجب عليك الإجابة على أسئلة المستخدم بالاعتماد **حصراً وفقط** على المعلومات التي يتم استرجاعها من قاعدة البيانات القانونية عبر أداة 'query_legal_database'. لا تستخدم أي معرفة خارجية أو معلومات عامة. **ممنوع تمامًا** الإجابة بدون استخدام أداة البحث أولاً. إذا لم تسفر نتيجة البحث عن معلومات كافية، يجب أن تكون إجابتك: "لم أجد معلومات كافية في قاعدة البيانات للإجابة على سؤالك." لا تحاول التخمين أو تقديم معلومات غير مؤكدة. **يجب أن تكون إجاباتك حاسمة ويقينية، وتجنب تمامًا استخدام عبارات غير مؤكدة مثل 'أعتقد'، 'غالباً'، أو 'أظن'.** بعد تقديم إجابتك، **يجب عليك** إدراج قائمة بالمصادر التي اعتمدت عليها من النتائج. يجب أن تستخدم عناوين المستندات فقط كمصادر. قم بتنسيق كل مصدر بشكل منفصل على النحو التالي: ` + "`[source: عنوان المستند]`" + `. عندما يقوم المستخدم بتحميل ملف، استخدم محتواه كمصدر أساسي للمعلومات. يمكنك أيضًا استخدام أداة 'query_legal_database' للمقارنة أو للعثور على معلومات إضافية من قاعدة البيانات. عند الإجابة، وضح ما إذا كانت المعلومة من الملف المرفق أو من قاعدة البيانات.`

const (
	LegalSearchToolName             = "query_legal_database"
	LegalSearchToolDescription      = "للبحث في قاعدة البيانات القانونية عن المستندات أو المواد ذات الصلة بناءً على استعلام البحث."
	LegalSearchToolParam            = "query"
	LegalSearchToolParamDescription = "مصطلح البحث أو السؤال للعثور على المعلومات القانونية ذات الصلة."

	// Same text for "nothing matched" and "lookup failed".
	LegalSearchNoResults = "لم يتم العثور على نتائج مطابقة في قاعدة البيانات."

	LegalSearchResultFormat    = "العنوان: %s\nالنص: %s"
	LegalSearchResultSeparator = "\n\n---\n\n"
	LegalSearchResultLimit     = 5
)

// GroundedPromptFormat wraps the first question asked after an upload.
// Args: file name, file content, question.
const GroundedPromptFormat = "هذا هو محتوى الملف الذي تم تحميله: \"%s\". استخدمه كمصدر أساسي للمعلومات ولكن يمكنك أيضًا استخدام قاعدة البيانات للمقارنة أو البحث عن معلومات إضافية.\n\nمحتوى الملف:\n%s\n\nسؤالي هو: %s"

// ============================================================
// SYSTEM ANNOTATIONS & USER-VISIBLE NOTICES
// ============================================================

const (
	SystemFileUploadedFormat = "تم رفع ملف \"%s\". يمكنك الآن طرح الأسئلة حوله."
	SystemFileCleared        = "تم إلغاء الملف."
	SystemSearchingFormat    = "جار البحث في قاعدة البيانات عن: \"%s\""

	NoticeHistoryLoadFailed = "لا يمكن تحميل سجل المحادثات."
	NoticeUserSaveFailed    = "فشل في حفظ رسالتك."
	NoticeModelSaveFailed   = "فشل في حفظ رد الذكاء الاصطناعي."
	NoticeClearFailed       = "تعذر مسح سجل المحادثات."
	NoticeTurnFailedFormat  = "حدث خطأ أثناء التواصل مع Gemini API: %s"
	NoticeUnexpectedError   = "حدث خطأ غير متوقع."
	NoticeMissingAPIKey     = "لم يتم العثور على مفتاح API."
	NoticeMalformedToolCall = "طلب الأداة غير صالح."
)

// ============================================================
// FILE INGESTION
// ============================================================

const (
	IngestLegacyDocFormat   = "ملفات .doc القديمة غير مدعومة. يرجى حفظ الملف بصيغة .docx والمحاولة مرة أخرى."
	IngestUnsupportedFormat = "نوع الملف غير مدعوم: .%s"
	IngestUnreadable        = "حدث خطأ أثناء قراءة الملف."
	IngestEmptyWorkbook     = "ملف Excel فارغ."
	IngestProcessingFailed  = "حدث خطأ أثناء معالجة الملف."
	IngestTruncatedFormat   = "حجم الملف كبير جدًا. سيتم تحليل أول %s حرف فقط."
	IngestMaxChars          = 1_000_000
	IngestDisplayLocale     = "ar-EG"
)
