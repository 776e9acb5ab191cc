package store

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Elizaveta2894/rgz-part2/model"
)

// seedUsers builds the two built-in accounts. Password hashes are generated
// fresh each time, so a reseeded file never carries a stale hash.
func seedUsers() ([]model.User, error) {
	today := time.Now().Format(model.DateLayout)

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("store: hash seed password: %w", err)
	}
	userHash, err := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("store: hash seed password: %w", err)
	}

	return []model.User{
		{
			ID:           1,
			Username:     "admin",
			PasswordHash: string(adminHash),
			IsAdmin:      true,
			Email:        "admin@example.com",
			CreatedAt:    today,
		},
		{
			ID:           2,
			Username:     "user",
			PasswordHash: string(userHash),
			IsAdmin:      false,
			Email:        "user@example.com",
			CreatedAt:    today,
		},
	}, nil
}

// seedRecipes builds the built-in catalog: ten curated recipes plus ninety
// generated ones with ids 11 through 100.
func seedRecipes() []model.Recipe {
	today := time.Now().Format(model.DateLayout)

	recipes := []model.Recipe{
		{
			ID:          1,
			Title:       "Омлет с сыром и зеленью",
			Description: "Простой и вкусный завтрак за 10 минут",
			Ingredients: []string{"Яйца - 3 шт", "Молоко - 50 мл", "Сыр твердый - 50 г", "Зелень - по вкусу", "Соль, перец - по вкусу", "Масло растительное - 1 ст.л."},
			Steps:       "1. Взбить яйца с молоком\n2. Добавить соль и перец\n3. Натереть сыр на терке\n4. Разогреть сковороду с маслом\n5. Вылить яичную смесь\n6. Добавить сыр и зелень\n7. Жарить на среднем огне 5-7 минут",
			ImageURL:    "https://source.unsplash.com/300x200/?omelet,breakfast",
			CookingTime: 10,
			Category:    "Завтрак",
			Difficulty:  "Легкая",
			Author:      "admin",
			Rating:      4.5,
			Views:       150,
			CreatedAt:   today,
		},
		{
			ID:          2,
			Title:       "Салат Цезарь с курицей",
			Description: "Классический салат с хрустящими сухариками",
			Ingredients: []string{"Куриное филе - 300 г", "Салат романо - 1 кочан", "Сухарики белые - 100 г", "Сыр пармезан - 50 г", "Соус цезарь - 3 ст.л.", "Чеснок - 2 зубчика", "Оливковое масло - 2 ст.л."},
			Steps:       "1. Обжарить куриное филе до готовности\n2. Порвать салат руками\n3. Натереть сыр на терке\n4. Приготовить соус\n5. Смешать все ингредиенты\n6. Добавить сухарики перед подачей",
			ImageURL:    "https://source.unsplash.com/300x200/?caesar,salad",
			CookingTime: 25,
			Category:    "Салат",
			Difficulty:  "Средняя",
			Author:      "admin",
			Rating:      4.8,
			Views:       230,
			CreatedAt:   today,
		},
		{
			ID:          3,
			Title:       "Борщ украинский",
			Description: "Наваристый борщ со сметаной",
			Ingredients: []string{"Говядина на кости - 500 г", "Свекла - 2 шт", "Капуста белокочанная - 300 г", "Картофель - 3 шт", "Морковь - 1 шт", "Лук репчатый - 1 шт", "Томатная паста - 2 ст.л.", "Сметана - для подачи"},
			Steps:       "1. Сварить бульон из мяса (1.5 часа)\n2. Нарезать овощи\n3. Пассеровать лук, морковь и свеклу\n4. Добавить овоцы в бульон\n5. Варить еще 30 минут\n6. Добавить капусту\n7. Варить до готовности",
			ImageURL:    "https://source.unsplash.com/300x200/?borscht,soup",
			CookingTime: 90,
			Category:    "Суп",
			Difficulty:  "Сложная",
			Author:      "admin",
			Rating:      4.9,
			Views:       180,
			CreatedAt:   today,
		},
		{
			ID:          4,
			Title:       "Паста Карбонара",
			Description: "Итальянская паста с беконом и сыром",
			Ingredients: []string{"Спагетти - 400 г", "Бекон - 200 г", "Яйца - 4 шт", "Сыр пармезан - 100 г", "Сливки 20% - 100 мл", "Чеснок - 2 зубчика", "Соль, черный перец - по вкусу"},
			Steps:       "1. Отварить пасту аль денте\n2. Обжарить бекон с чесноком\n3. Взбить яйца со сливками и сыром\n4. Смешать пасту с беконом\n5. Добавить яичную смесь\n6. Быстро перемешать на выключенном огне",
			ImageURL:    "https://source.unsplash.com/300x200/?pasta,carbonara",
			CookingTime: 20,
			Category:    "Основное блюдо",
			Difficulty:  "Средняя",
			Author:      "admin",
			Rating:      4.7,
			Views:       210,
			CreatedAt:   today,
		},
		{
			ID:          5,
			Title:       "Шоколадный торт",
			Description: "Нежный шоколадный торт без выпечки",
			Ingredients: []string{"Печенье песочное - 300 г", "Шоколад темный - 200 г", "Сливочное масло - 100 г", "Сливки 33% - 200 мл", "Сахарная пудра - 50 г", "Желатин - 20 г", "Какао - для украшения"},
			Steps:       "1. Измельчить печенье в крошку\n2. Растопить шоколад и масло\n3. Смешать с печеньем\n4. Выложить в форму\n5. Приготовить крем из сливок\n6. Залить кремом основу\n7. Охлаждать 4 часа в холодильнике",
			ImageURL:    "https://source.unsplash.com/300x200/?chocolate,cake",
			CookingTime: 30,
			Category:    "Десерт",
			Difficulty:  "Средняя",
			Author:      "admin",
			Rating:      4.9,
			Views:       190,
			CreatedAt:   today,
		},
		{
			ID:          6,
			Title:       "Греческий салат",
			Description: "Свежий овощной салат с сыром фета",
			Ingredients: []string{"Помидоры - 3 шт", "Огурцы - 2 шт", "Перец болгарский - 1 шт", "Лук красный - 1 шт", "Сыр фета - 200 г", "Маслины - 100 г", "Оливковое масло - 3 ст.л.", "Орегано - 1 ч.л."},
			Steps:       "1. Нарезать овочи крупными кубиками\n2. Добавить маслины\n3. Поломать сыр фета руками\n4. Заправить маслом и специями\n5. Аккуратно перемешать",
			ImageURL:    "https://source.unsplash.com/300x200/?greek,salad",
			CookingTime: 15,
			Category:    "Салат",
			Difficulty:  "Легкая",
			Author:      "admin",
			Rating:      4.6,
			Views:       175,
			CreatedAt:   today,
		},
		{
			ID:          7,
			Title:       "Куриные крылышки в медовом соусе",
			Description: "Хрустящие крылышки с сладко-острым соусом",
			Ingredients: []string{"Куриные крылышки - 1 кг", "Мед - 3 ст.л.", "Соевый соус - 4 ст.л.", "Чеснок - 4 зубчика", "Имбирь тертый - 1 ст.л.", "Кунжут - для подачи", "Зеленый лук - для украшения"},
			Steps:       "1. Замариновать крылышки на 1 час\n2. Запечь в духовке 25 минут\n3. Приготовить соус\n4. Обмазать крылышки соусом\n5. Запечь еще 10 минут\n6. Посыпать кунжутом и луком",
			ImageURL:    "https://source.unsplash.com/300x200/?chicken,wings",
			CookingTime: 45,
			Category:    "Закуска",
			Difficulty:  "Средняя",
			Author:      "admin",
			Rating:      4.8,
			Views:       220,
			CreatedAt:   today,
		},
		{
			ID:          8,
			Title:       "Сырники с ягодами",
			Description: "Нежные сырники на завтрак",
			Ingredients: []string{"Творог - 500 г", "Яйца - 2 шт", "Мука - 4 ст.л.", "Сахар - 3 ст.л.", "Ванилин - 1 ч.л.", "Соль - щепотка", "Ягоды свежие - для подачи", "Сметана - для подачи"},
			Steps:       "1. Протереть творог через сито\n2. Смешать с яйцами и сахаром\n3. Добавить муку\n4. Сформировать сырники\n5. Обжарить на среднем огне с двух сторон\n6. Подавать с ягодами и сметаной",
			ImageURL:    "https://source.unsplash.com/300x200/?cheesecakes,breakfast",
			CookingTime: 25,
			Category:    "Завтрак",
			Difficulty:  "Легкая",
			Author:      "admin",
			Rating:      4.7,
			Views:       165,
			CreatedAt:   today,
		},
		{
			ID:          9,
			Title:       "Томатный суп-пюре",
			Description: "Густой крем-суп из томатов",
			Ingredients: []string{"Помидоры - 1 кг", "Лук - 1 шт", "Морковь - 1 шт", "Чеснок - 3 зубчика", "Сливки 20% - 200 мл", "Базилик свежий - пучок", "Оливковое масло - 2 ст.л.", "Соль, перец - по вкусу"},
			Steps:       "1. Обжарить лук и морковь\n2. Добавить помидоры\n3. Тушить 20 минут\n4. Измельчить блендером\n5. Добавить сливки\n6. Прогреть 5 минут\n7. Украсить базиликом",
			ImageURL:    "https://source.unsplash.com/300x200/?tomato,soup",
			CookingTime: 35,
			Category:    "Суп",
			Difficulty:  "Легкая",
			Author:      "admin",
			Rating:      4.5,
			Views:       140,
			CreatedAt:   today,
		},
		{
			ID:          10,
			Title:       "Пицца Маргарита",
			Description: "Классическая итальянская пицца",
			Ingredients: []string{"Тесто для пиццы - 500 г", "Помидоры - 3 шт", "Сыр моцарелла - 250 г", "Соус томатный - 5 ст.л.", "Базилик свежий - пучок", "Оливковое масло - 2 ст.л.", "Соль, орегано - по вкусу"},
			Steps:       "1. Раскатать тесто\n2. Смазать томатным соусом\n3. Выложить помидоры и сыр\n4. Посыпать специями\n5. Выпекать 15-20 минут\n6. Украсить базиликом",
			ImageURL:    "https://source.unsplash.com/300x200/?pizza,margarita",
			CookingTime: 30,
			Category:    "Основное блюдо",
			Difficulty:  "Средняя",
			Author:      "admin",
			Rating:      4.9,
			Views:       280,
			CreatedAt:   today,
		},
	}

	meals := []string{"завтрака", "обеда", "ужина", "десерта", "перекуса"}

	for i := 11; i <= 100; i++ {
		cat := model.Categories[i%len(model.Categories)]

		titles := []string{
			fmt.Sprintf("Вкусный %s номер %d", cat, i),
			fmt.Sprintf("Домашний рецепт %sа", cat),
			fmt.Sprintf("Авторский %s от шеф-повара", cat),
			fmt.Sprintf("Быстрый %s на скорую руку", cat),
			fmt.Sprintf("Праздничный %s", cat),
		}

		stepTexts := []string{
			"Подготовьте все ингредиенты",
			"Тщательно перемешайте основные компоненты",
			"Добавьте специи по вкусу",
			fmt.Sprintf("Готовьте в течение %d минут", i%20+10),
			"Подавайте блюдо горячим",
			"Украсьте свежей зеленью",
		}
		steps := make([]string, 0, len(stepTexts))
		for j, text := range stepTexts[:i%4+3] {
			steps = append(steps, fmt.Sprintf("Шаг %d: %s", j+1, text))
		}

		recipes = append(recipes, model.Recipe{
			ID:          i,
			Title:       titles[i%len(titles)],
			Description: fmt.Sprintf("Замечательный рецепт %sа, который понравится всей семье. Идеально подходит для %s.", cat, meals[i%len(meals)]),
			Ingredients: []string{
				fmt.Sprintf("Мука - %d ст.л.", i%5+1),
				fmt.Sprintf("Яйца - %d шт", i%3+1),
				fmt.Sprintf("Молоко - %d мл", (i%4+1)*50),
				fmt.Sprintf("Сахар - %d ст.л.", i%3+1),
				"Соль - по вкусу",
				fmt.Sprintf("Масло - %d ст.л.", i%2+1),
				"Специи - по вкусу",
			},
			Steps:       strings.Join(steps, "\n"),
			ImageURL:    fmt.Sprintf("https://source.unsplash.com/300x200/?food,%s&sig=%d", strings.ToLower(cat), i),
			CookingTime: i%60 + 15,
			Category:    cat,
			Difficulty:  model.Difficulties[i%len(model.Difficulties)],
			Author:      "admin",
			Rating:      4.0 + float64(i%10)/10,
			Views:       i * 10,
			CreatedAt:   today,
		})
	}

	return recipes
}
